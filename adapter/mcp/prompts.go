package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for the booking workflow.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("book_opportunity").
		Description("Walk the three parties through booking a last-minute appointment.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Book a last-minute opportunity",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me book a last-minute appointment between a service provider (SP),
a service receiver (SR) and a facilitator (SF). Use the session.* tools:

1. Start a session with session.start, or pick the latest one from opportunity://sessions
2. Ask the receiver which slots work and call session.act with role "receiver"
   and action "submit_receiver_availability"
3. Do the same for the facilitator with "submit_facilitator_availability"
4. Check session.stage for the mutual slots and, as the provider, call
   "select_opportunity" with one of them
5. Record each party's answer with "respond_confirmation"
6. Show the final session.record

If an action is rejected, explain the reason code (forbidden, unknown_slot,
precondition_failed, already_responded) and what to do instead.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("review_session").
		Description("Summarize where a booking session stands and who needs to act next.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Session review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Read opportunity://sessions/latest and call session.stage once for each of
provider, receiver and facilitator. Summarize the current stage, the mutual
slots, the selected opportunity and each party's confirmation, then say who
has to act next and with which session.act call.`,
						},
					},
				},
			}, nil
		})

	return nil
}
