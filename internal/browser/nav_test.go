package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/openoutreach/internal/logging"
)

func TestGotoSuccess(t *testing.T) {
	d := newFakeDriver()
	trail := logging.NewTrail("test")

	err := Goto(d, func() error {
		return d.Navigate("https://www.linkedin.com/in/jane-doe/")
	}, "/in/", time.Millisecond, "profile navigation failed", trail)

	require.NoError(t, err)
}

func TestGotoFragmentMismatch(t *testing.T) {
	d := newFakeDriver()
	d.url = "https://www.linkedin.com/authwall"
	trail := logging.NewTrail("test")

	err := Goto(d, func() error { return nil }, "/in/", time.Millisecond, "profile navigation failed", trail)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Contains(t, err.Error(), "profile navigation failed")
	assert.Contains(t, err.Error(), "authwall")
}

func TestGotoActionFailure(t *testing.T) {
	d := newFakeDriver()
	d.navErr = errBoom
	trail := logging.NewTrail("test")

	err := Goto(d, func() error {
		return d.Navigate("https://www.linkedin.com/in/jane-doe/")
	}, "/in/", time.Millisecond, "profile navigation failed", trail)

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestGotoDecodesURLBeforeVerifying(t *testing.T) {
	d := newFakeDriver()
	// Percent-encoded profile slug; the raw URL never contains the
	// decoded fragment.
	d.url = "https://www.linkedin.com/in/j%C3%B8hn-doe/"
	trail := logging.NewTrail("test")

	err := Goto(d, func() error { return nil }, "/in/jøhn", time.Millisecond, "profile navigation failed", trail)
	assert.NoError(t, err)
}

func TestGotoCaseInsensitive(t *testing.T) {
	d := newFakeDriver()
	d.url = "https://www.linkedin.com/in/Jane-Doe/"
	trail := logging.NewTrail("test")

	err := Goto(d, func() error { return nil }, "/in/jane-doe", time.Millisecond, "profile navigation failed", trail)
	assert.NoError(t, err)
}
