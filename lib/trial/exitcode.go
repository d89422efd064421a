package trial

// Exit codes understood from an external trial command.
const (
	ExitCodeMatch   = 0 // The candidate unlocked the target.
	ExitCodeNoMatch = 1 // The candidate was rejected.
)

// ExitCodeInfo describes how a trial command's exit code is interpreted.
type ExitCodeInfo struct {
	ExitCode  int
	Status    string
	Match     bool
	Attempted bool // false when the command could not judge the candidate
}

// ClassifyExitCode interprets the exit code of a trial command.
func ClassifyExitCode(exitCode int) ExitCodeInfo {
	switch exitCode {
	case ExitCodeMatch:
		return ExitCodeInfo{ExitCode: exitCode, Status: "match", Match: true, Attempted: true}
	case ExitCodeNoMatch:
		return ExitCodeInfo{ExitCode: exitCode, Status: "no_match", Attempted: true}
	default:
		return ExitCodeInfo{ExitCode: exitCode, Status: "error"}
	}
}
