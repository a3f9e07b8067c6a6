package neterr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err    error
		target error
		kind   Kind
	}{
		{InvalidParameter("code"), ErrInvalidParameter, KindInvalidParameter},
		{NotFound("api"), ErrNotFound, KindNotFound},
		{InvalidURL("::", errors.New("bad")), ErrInvalidURL, KindInvalidURL},
	}
	for _, c := range cases {
		require.ErrorIs(t, c.err, c.target)
		kind, ok := KindOf(fmt.Errorf("wrapped: %w", c.err))
		require.True(t, ok)
		require.Equal(t, c.kind, kind)
	}

	require.NotErrorIs(t, NotFound("api"), ErrInvalidParameter)
	_, ok := KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestErrorCarriesLocation(t *testing.T) {
	err := InvalidParameter("code")
	require.Equal(t, DomainPreface, err.Location.Domain)
	require.True(t, strings.HasSuffix(err.Location.File, "errors_test.go"), err.Location.File)
	require.Contains(t, err.Location.Function, "TestErrorCarriesLocation")
	require.True(t, strings.HasPrefix(err.Error(), "com.doublenode.blankNetwork.invalidParameter"))
	require.Contains(t, err.Location.String(), "errors_test.go")
}

func TestInvalidURLUnwrapsCause(t *testing.T) {
	cause := errors.New("missing host")
	err := InvalidURL("https://", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "missing host")
}

func TestReportOnlyOnce(t *testing.T) {
	ctx := context.Background()
	mem := NewMemReporter(0)
	err := NotFound("missing")

	Report(ctx, mem, err)
	Report(ctx, mem, fmt.Errorf("router: %w", err))
	require.Equal(t, 1, mem.Len())
	require.True(t, err.Reported())

	plain := errors.New("transport down")
	Report(ctx, mem, plain)
	Report(ctx, mem, plain)
	require.Equal(t, 3, mem.Len())

	recs := mem.Records()
	require.Equal(t, KindNotFound, recs[0].Kind)
	require.Equal(t, "missing", recs[0].Parameter)
	require.NotNil(t, recs[0].Location)
	require.Nil(t, recs[1].Location)
}

func TestReportNilSafe(t *testing.T) {
	Report(context.Background(), nil, NotFound("x"))
	Report(context.Background(), NopReporter{}, nil)
}

func TestNopReporterDoesNotConsumeReport(t *testing.T) {
	err := NotFound("api")
	Report(context.Background(), NopReporter{}, err)
	require.False(t, err.Reported())

	mem := NewMemReporter(0)
	Report(context.Background(), mem, err)
	require.True(t, err.Reported())
	require.Equal(t, 1, mem.Len())
}

func TestMemReporterLimit(t *testing.T) {
	mem := NewMemReporter(2)
	for i := 0; i < 5; i++ {
		mem.Report(context.Background(), fmt.Errorf("err %d", i))
	}
	recs := mem.Records()
	require.Len(t, recs, 2)
	require.Equal(t, "err 3", recs[0].Message)
	require.Equal(t, "err 4", recs[1].Message)
}

type captureLogger struct {
	errors []string
	args   [][]any
}

func (c *captureLogger) Info(string, ...any) {}
func (c *captureLogger) Error(msg string, args ...any) {
	c.errors = append(c.errors, msg)
	c.args = append(c.args, args)
}

func TestLogAndMultiReporter(t *testing.T) {
	logger := &captureLogger{}
	mem := NewMemReporter(0)
	multi := MultiReporter{LogReporter{Logger: logger}, nil, mem}

	Report(context.Background(), multi, InvalidParameter("code"))
	require.Equal(t, []string{"network error"}, logger.errors)
	require.Contains(t, logger.args[0], "invalidParameter")
	require.Equal(t, 1, mem.Len())
}
