package display

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/testhelpers"
	"github.com/unclesp1d3r/keysmith/lib/wordlist"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := appstate.Logger
	appstate.Logger = log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	t.Cleanup(func() { appstate.Logger = orig })
	return &buf
}

func TestCandidateCount(t *testing.T) {
	assert.Equal(t, "unknown", CandidateCount(nil))
	assert.Equal(t, "1,234,567", CandidateCount(big.NewInt(1234567)))

	huge, ok := new(big.Int).SetString("47672401706823533450263330816", 10)
	require.True(t, ok)
	assert.Equal(t, "47,672,401,706,823,533,450,263,330,816", CandidateCount(huge))
}

func TestJobProgress(t *testing.T) {
	buf := captureLogs(t)

	JobProgress(engine.Progress{
		Index: 2500, Total: 10000, Percent: 25, PercentKnown: true, ETA: 90 * time.Second, ETAKnown: true,
	})
	out := buf.String()
	assert.Contains(t, out, "Progress update")
	assert.Contains(t, out, "tried=2,500")
	assert.Contains(t, out, "total=10,000")
	assert.Contains(t, out, "progress=25%")
	assert.Contains(t, out, "eta=1m30s")

	buf.Reset()
	JobProgress(engine.Progress{Index: 7})
	assert.Contains(t, buf.String(), "total=unknown")
	assert.Contains(t, buf.String(), "progress=unknown")
	assert.Contains(t, buf.String(), "eta=unknown")
}

func TestJobProgress_ShowsFlooredPercent(t *testing.T) {
	buf := captureLogs(t)

	// 2 of 3 is 66.67 as a float; the event stream carries the floored 66.
	JobProgress(engine.Progress{Index: 2, Total: 3, Percent: 66, PercentKnown: true})
	assert.Contains(t, buf.String(), "progress=66%")
	assert.NotContains(t, buf.String(), "66.67")
}

func TestEvent_Outcome(t *testing.T) {
	buf := captureLogs(t)

	Event(engine.Event{Kind: engine.EventOutcome, Outcome: &engine.Outcome{
		Target: "HomeNetwork", State: engine.StateSucceeded, Found: true, Candidate: "hunter2", AttemptsTried: 2,
	}})
	assert.Contains(t, buf.String(), "Success! Password for 'HomeNetwork' is: hunter2")
	assert.Contains(t, buf.String(), "Tried 2 passwords")
}

func TestEvent_Paused(t *testing.T) {
	buf := captureLogs(t)

	sess := testhelpers.NewTestSession("Cafe Wi-Fi", testhelpers.NewDictionaryConfig("a"), 12)
	Event(engine.Event{Kind: engine.EventPaused, Session: sess})
	assert.Contains(t, buf.String(), "Attack paused")
	assert.Contains(t, buf.String(), "keysmith resume")
	assert.Contains(t, buf.String(), "Cafe Wi-Fi")
}

func TestTrialError_StripsControlCharacters(t *testing.T) {
	buf := captureLogs(t)

	TrialError(engine.Event{Index: 3, Message: "bad\x1b[31m output\x00"})
	assert.Contains(t, buf.String(), "bad[31m output")
	assert.NotContains(t, buf.String(), "\x1b")
}

func TestSessions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Sessions(&buf, nil))
	assert.Equal(t, "No saved sessions.\n", buf.String())

	buf.Reset()
	brute := testhelpers.NewTestSession("HomeNetwork", testhelpers.NewBruteForceConfig("ab", 1, 2), 4)
	dict := testhelpers.NewTestSession("Cafe", testhelpers.NewDictionaryConfig("x"), 1234)
	require.NoError(t, Sessions(&buf, []*checkpoint.Session{brute, dict}))

	out := buf.String()
	assert.Contains(t, out, "TARGET")
	assert.Contains(t, out, "HomeNetwork")
	assert.Contains(t, out, "bruteforce")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "?")
}

func TestSession(t *testing.T) {
	var buf bytes.Buffer
	sess := testhelpers.NewTestSession("HomeNetwork", testhelpers.NewBruteForceConfig("ab", 1, 2), 4)

	require.NoError(t, Session(&buf, sess))
	out := buf.String()
	assert.Contains(t, out, sess.ID)
	assert.Contains(t, out, "Lengths:")
	assert.Contains(t, out, "4 of 6")
}

func TestLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Lists(&buf, nil))
	assert.Equal(t, "No password lists found.\n", buf.String())

	buf.Reset()
	require.NoError(t, Lists(&buf, []wordlist.Info{{Name: "common.txt", Size: 2048, ModTime: time.Now()}}))
	assert.Contains(t, buf.String(), "common.txt")
	assert.Contains(t, buf.String(), "2.0 kB")
}
