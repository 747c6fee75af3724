package notify

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type MailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// MailSink reports transitions by mail to the actor who triggered them.
type mailSink struct {
	log  *logger.Logger
	key  string
	from *sgmail.Email
	// api is sendgridAPI outside tests.
	api func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

func NewMailSink(log *logger.Logger, cfg MailConfig) (Sink, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("missing SENDGRID_FROM_EMAIL")
	}
	name := strings.TrimSpace(cfg.FromName)
	if name == "" {
		name = "Learning unit catalogue"
	}
	return &mailSink{
		log:  log.With("sink", "MailSink"),
		key:  strings.TrimSpace(cfg.APIKey),
		from: sgmail.NewEmail(name, strings.TrimSpace(cfg.FromEmail)),
		api:  sendgridAPI,
	}, nil
}

func sendgridAPI(ctx context.Context, req rest.Request) (*rest.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sendgrid.API(req)
}

func (s *mailSink) Name() string { return "mail" }

func (s *mailSink) Send(ctx context.Context, ev Event) error {
	if strings.TrimSpace(ev.Actor.Email) == "" {
		s.log.Debug("no recipient address, mail skipped", "kind", ev.Kind, "person_id", ev.Actor.PersonID)
		return nil
	}
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.message(ev))

	res, err := s.api(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid http %d: %s", res.StatusCode, strings.TrimSpace(res.Body))
	}
	return nil
}

func (s *mailSink) message(ev Event) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(ev.Actor.Name, ev.Actor.Email))
	p.Subject = Subject(ev)

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", Body(ev)))
	return m
}

// Subject is the mail subject of an event.
func Subject(ev Event) string {
	switch ev.Kind {
	case KindCancellationReport:
		return fmt.Sprintf("Cancellation of %d proposal(s)", len(ev.Proposals))
	case KindConsolidationReport:
		return fmt.Sprintf("Consolidation of %d proposal(s)", len(ev.Proposals))
	case KindForceStateReport:
		return fmt.Sprintf("State change of %d proposal(s)", len(ev.Proposals))
	case KindPostponementReport:
		return "Postponement report"
	}
	if len(ev.Proposals) == 1 {
		p := ev.Proposals[0]
		return fmt.Sprintf("Proposal %s (%d): %s", p.Acronym, p.Year, ev.Transition)
	}
	return "Proposal " + ev.Transition
}

// Body renders the plain text content of an event.
func Body(ev Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", Subject(ev))
	for _, p := range ev.Proposals {
		fmt.Fprintf(&b, "- %s (%d) %s, state %s\n", p.Acronym, p.Year, p.Type, p.State)
	}
	if len(ev.ResearchCriteria) > 0 {
		keys := make([]string, 0, len(ev.ResearchCriteria))
		for k := range ev.ResearchCriteria {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nResearch criteria:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, ev.ResearchCriteria[k])
		}
	}
	for _, bucket := range []string{BucketSuccess, BucketError, BucketInfo} {
		lines := ev.Outcomes[bucket]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", bucket)
		for _, l := range lines {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}
	for _, r := range ev.Postponements {
		if r == nil {
			continue
		}
		fmt.Fprintf(&b, "\nPostponement of %s (%d): %d copied, %d failed, %d removed\n",
			r.Source.Acronym, r.Source.Year, len(r.Succeeded), len(r.Failed), len(r.Removed))
		for _, f := range r.Failed {
			fmt.Fprintf(&b, "  %d: %s\n", f.Year, f.Error)
		}
	}
	return b.String()
}
