package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/hupe1980/tripgraph"
	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/session"
)

type runFlags struct {
	sessionID   string
	asJSON      bool
	interactive bool
	plain       bool
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <message>...",
		Short: "Plan a trip from one or more user messages",
		Example: `  tripgraph run "Plan 7 days in Japan for two, budget 4000 EUR"
  tripgraph run -i "I want to visit Portugal"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}

			tg, err := tripgraph.NewFromConfig(cfg, tripgraph.Deps{Logger: logger})
			if err != nil {
				return err
			}

			msgs := make([]core.Message, 0, len(args))
			for _, a := range args {
				msgs = append(msgs, core.NewUserMessage(a))
			}

			out := cmd.OutOrStdout()
			sessionID := rf.sessionID
			in := bufio.NewScanner(cmd.InOrStdin())

			for {
				rec, runErr := tg.Run(cmd.Context(), sessionID, msgs)
				if rec == nil {
					return runErr
				}
				sessionID = rec.SessionID

				if err := printRecord(out, rec, rf); err != nil {
					return err
				}
				if runErr != nil && !errors.Is(runErr, core.ErrMalformedOutput) {
					return runErr
				}

				if !rf.interactive {
					return nil
				}

				next, ok := prompt(out, in)
				if !ok {
					return nil
				}
				msgs = []core.Message{core.NewUserMessage(next)}
			}
		},
	}

	cmd.Flags().StringVarP(&rf.sessionID, "session", "s", "", "Session id to continue")
	cmd.Flags().BoolVar(&rf.asJSON, "json", false, "Print the final run record as JSON")
	cmd.Flags().BoolVarP(&rf.interactive, "interactive", "i", false, "Keep the session open for follow-up messages")
	cmd.Flags().BoolVar(&rf.plain, "plain", false, "Print markdown without terminal styling")

	return cmd
}

func prompt(out io.Writer, in *bufio.Scanner) (string, bool) {
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return "", false
		}
		text := strings.TrimSpace(in.Text())
		switch text {
		case "":
			continue
		case "exit", "quit":
			return "", false
		}
		return text, true
	}
}

func printRecord(out io.Writer, rec *session.Record, rf *runFlags) error {
	if rf.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	md := Markdown(rec.State)
	if rf.plain {
		_, err := fmt.Fprintln(out, md)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	rendered, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// Markdown renders the outcome of a run for the terminal.
func Markdown(s *core.State) string {
	if s == nil {
		return ""
	}
	if !s.IsValid || !s.HasItinerary() {
		return tripgraph.FinalReply(s)
	}

	if summary, ok := s.Itinerary["summary"].(string); ok && len(s.Itinerary) == 1 {
		return summary
	}

	var b strings.Builder

	title := s.UserProfile.Destination
	if d, ok := s.Itinerary["destination"].(string); ok && d != "" {
		title = d
	}
	fmt.Fprintf(&b, "# Trip to %s\n\n", title)

	days, _ := s.Itinerary["days"].([]any)
	for i, raw := range days {
		day, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## Day %v\n\n", valueOr(day["day_number"], i+1))
		writePlaces(&b, "Attractions", day["attractions"])
		writePlaces(&b, "Dining", day["dining"])
		if cost, ok := day["daily_cost_estimate"]; ok {
			fmt.Fprintf(&b, "*Estimated cost:* %v\n\n", cost)
		}
	}

	if total, ok := s.Itinerary["total_cost_estimate"]; ok {
		fmt.Fprintf(&b, "**Total estimate:** %v %s\n\n", total, s.UserProfile.Currency)
	}

	if tips, ok := s.Itinerary["tips"].([]any); ok && len(tips) > 0 {
		b.WriteString("## Tips\n\n")
		for _, tip := range tips {
			fmt.Fprintf(&b, "- %v\n", tip)
		}
		b.WriteString("\n")
	}

	if len(days) == 0 {
		data, err := json.MarshalIndent(s.Itinerary, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "```json\n%s\n```\n", data)
		}
	}

	return b.String()
}

func writePlaces(b *strings.Builder, heading string, raw any) {
	places, _ := raw.([]any)
	if len(places) == 0 {
		return
	}

	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, p := range places {
		place, ok := p.(map[string]any)
		if !ok {
			fmt.Fprintf(b, "- %v\n", p)
			continue
		}
		fmt.Fprintf(b, "- **%v**", valueOr(place["name"], "unnamed"))
		if loc, ok := place["location"].(string); ok && loc != "" {
			fmt.Fprintf(b, ", %s", loc)
		}
		if rating, ok := place["rating"]; ok {
			fmt.Fprintf(b, " (rating %v)", rating)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func valueOr(v, fallback any) any {
	if v == nil {
		return fallback
	}
	return v
}
