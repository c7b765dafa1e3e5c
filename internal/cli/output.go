package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/usecase"
	"gopkg.in/yaml.v3"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the query ran but found nothing or the feed failed
	ExitCommandError = 2 // bad arguments or configuration
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type resolutionOutput struct {
	MatchID       match.ID             `json:"match_id"`
	Source        string               `json:"source"`
	Resolving     bool                 `json:"resolving,omitempty"`
	Live          *match.LiveMatch     `json:"live,omitempty"`
	Schedule      *match.ScheduleMatch `json:"schedule,omitempty"`
	LiveError     string               `json:"live_error,omitempty"`
	ScheduleError string               `json:"schedule_error,omitempty"`
}

func toResolutionOutput(res usecase.Resolution) resolutionOutput {
	out := resolutionOutput{
		MatchID:   res.MatchID,
		Source:    string(res.View.Source),
		Resolving: res.Resolving,
		Live:      res.View.Live,
		Schedule:  res.View.Schedule,
	}
	if out.Source == "" && !res.Resolving {
		out.Source = "absent"
	}
	if res.LiveErr != nil {
		out.LiveError = res.LiveErr.Error()
	}
	if res.ScheduleErr != nil {
		out.ScheduleError = res.ScheduleErr.Error()
	}
	return out
}

// Printer renders command results. JSON is indented for single values and
// one object per line when streaming; YAML streams as separate documents.
type Printer struct {
	format string
	w      io.Writer
	yaml   *yaml.Encoder
}

func NewPrinter(format string, w io.Writer) *Printer {
	return &Printer{format: format, w: w}
}

func (p *Printer) LiveMatches(items []match.LiveMatch) error {
	if p.format != "text" {
		return p.structured(items, false)
	}
	tw := p.table("MATCH", "STATUS", "TEAMS", "SCORE", "OVERS")
	for _, item := range items {
		liveRow(tw, item)
	}
	return tw.Flush()
}

func (p *Printer) Schedules(items []match.ScheduleMatch) error {
	if p.format != "text" {
		return p.structured(items, false)
	}
	tw := p.table("MATCH", "STATUS", "TEAMS", "VENUE", "START")
	for _, item := range items {
		scheduleRow(tw, item)
	}
	return tw.Flush()
}

func (p *Printer) Resolution(res usecase.Resolution, stream bool) error {
	if p.format != "text" {
		return p.structured(toResolutionOutput(res), stream)
	}

	var line string
	switch {
	case res.Resolving:
		line = fmt.Sprintf("%d\tresolving", res.MatchID)
	case res.View.Source == match.SourceLive:
		m := res.View.Live
		line = fmt.Sprintf("%d\tlive\t%s\t%s\t%s (%.1f ov)", m.MatchID, m.Status, teams(m.Team1, m.Team2), m.Score, m.Overs)
	case res.View.Source == match.SourceSchedule:
		m := res.View.Schedule
		line = fmt.Sprintf("%d\tschedule\t%s\t%s\t%s", m.MatchID, m.Status, teams(m.Team1, m.Team2), startTime(m.StartTime))
	default:
		line = fmt.Sprintf("%d\tabsent", res.MatchID)
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p *Printer) structured(v any, stream bool) error {
	switch p.format {
	case "yaml":
		// go through JSON so field names follow the json tags
		raw, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := sonic.Unmarshal(raw, &generic); err != nil {
			return err
		}
		if p.yaml == nil {
			p.yaml = yaml.NewEncoder(p.w)
			p.yaml.SetIndent(2)
		}
		return p.yaml.Encode(generic)
	default:
		var (
			raw []byte
			err error
		)
		if stream {
			raw, err = sonic.Marshal(v)
		} else {
			raw, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, string(raw))
		return err
	}
}

// Close flushes a pending YAML stream.
func (p *Printer) Close() error {
	if p.yaml == nil {
		return nil
	}
	return p.yaml.Close()
}

func (p *Printer) table(headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func liveRow(w io.Writer, m match.LiveMatch) {
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\n", m.MatchID, m.Status, teams(m.Team1, m.Team2), m.Score, m.Overs)
}

func scheduleRow(w io.Writer, m match.ScheduleMatch) {
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.MatchID, m.Status, teams(m.Team1, m.Team2), m.Venue, startTime(m.StartTime))
}

func teams(a, b match.Team) string {
	name := func(t match.Team) string {
		if t.ShortName != "" {
			return t.ShortName
		}
		return t.Name
	}
	return name(a) + " v " + name(b)
}

func startTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
