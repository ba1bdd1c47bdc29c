package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// EventSupplierInvitation is the only event not tied to a lifecycle
// transition; it carries an Invitation instead of a PIRRequest.
const EventSupplierInvitation = "SUPPLIER_INVITATION"

// Dispatcher translates a lifecycle event into exactly one outbound email, or
// zero when the recipient cannot be resolved. Dispatch is fire-and-forget:
// the lifecycle manager never awaits the result and a delivery failure never
// rolls back a committed status change (at-most-once policy).
type Dispatcher struct {
	companyRepo repository.CompanyRepository
	sender      Sender
	log         *logger.Logger
	baseURL     string
	timeout     time.Duration
}

// NewDispatcher builds the dispatcher. timeout bounds each async delivery.
func NewDispatcher(companyRepo repository.CompanyRepository, sender Sender, log *logger.Logger, baseURL string) *Dispatcher {
	return &Dispatcher{
		companyRepo: companyRepo,
		sender:      sender,
		log:         log,
		baseURL:     baseURL,
		timeout:     15 * time.Second,
	}
}

// DispatchAsync fires the event in its own goroutine, detached from the HTTP
// cycle, with its own context and timeout.
func (d *Dispatcher) DispatchAsync(event pir.Event, req *entity.PIRRequest) {
	if event == pir.EventNone {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.Dispatch(ctx, event, req); err != nil {
			d.log.Warn().Err(err).
				Str("event", string(event)).
				Str("pir_id", req.ID).
				Msg("notification delivery failed")
		}
	}()
}

// Dispatch is the synchronous core: resolves the recipient, renders the email
// and sends it. A missing recipient email is logged and dropped, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, event pir.Event, req *entity.PIRRequest) error {
	if event == pir.EventNone {
		return nil
	}

	recipientID := d.recipientCompanyID(event, req)
	recipient, err := d.companyRepo.GetByID(recipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient company: %w", err)
	}
	if recipient == nil || recipient.ContactEmail == "" {
		d.log.Warn().
			Str("event", string(event)).
			Str("pir_id", req.ID).
			Str("company_id", recipientID).
			Msg("recipient has no contact email, dropping notification")
		return nil
	}

	counterpartID := req.CustomerID
	if recipientID == req.CustomerID {
		counterpartID = req.SupplierCompanyID
	}
	counterpartName := ""
	if c, err := d.companyRepo.GetByID(counterpartID); err == nil && c != nil {
		counterpartName = c.Name
	}

	email := d.render(event, req, counterpartName)
	email.To = recipient.ContactEmail
	if err := d.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("send %s email: %w", event, err)
	}
	d.log.Info().
		Str("event", string(event)).
		Str("pir_id", req.ID).
		Str("to", recipient.ContactEmail).
		Msg("notification sent")
	return nil
}

// DispatchInvitationAsync sends a supplier invitation email, fire-and-forget.
func (d *Dispatcher) DispatchInvitationAsync(inv *entity.Invitation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.DispatchInvitation(ctx, inv); err != nil {
			d.log.Warn().Err(err).Str("invitation_id", inv.ID).Msg("invitation email failed")
		}
	}()
}

// DispatchInvitation sends the invitation email synchronously.
func (d *Dispatcher) DispatchInvitation(ctx context.Context, inv *entity.Invitation) error {
	if inv.Email == "" {
		d.log.Warn().Str("invitation_id", inv.ID).Msg("invitation without email, dropping")
		return nil
	}
	inviter := ""
	if c, err := d.companyRepo.GetByID(inv.InvitingCompanyID); err == nil && c != nil {
		inviter = c.Name
	}
	link := fmt.Sprintf("%s/invitations/accept?token=%s", d.baseURL, inv.Token)
	email := Email{
		To:      inv.Email,
		Subject: fmt.Sprintf("%s invited you to join Compliant Connect", inviter),
		HTML: fmt.Sprintf(
			`<p>Hello %s,</p><p>%s invited %s to provide product compliance information.</p>`+
				`<p><a href="%s">Accept the invitation</a> to create your account.</p>`,
			inv.ContactName, inviter, inv.SupplierName, link,
		),
	}
	if err := d.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}
	return nil
}

// recipientCompanyID maps an event to the side that gets the email: the
// supplier hears about new requests and review outcomes, the customer about
// submissions.
func (d *Dispatcher) recipientCompanyID(event pir.Event, req *entity.PIRRequest) string {
	switch event {
	case pir.EventResponseSubmitted, pir.EventResponseResubmitted:
		return req.CustomerID
	default:
		return req.SupplierCompanyID
	}
}

func (d *Dispatcher) render(event pir.Event, req *entity.PIRRequest, counterpart string) Email {
	link := fmt.Sprintf("%s/pirs/%s", d.baseURL, req.ID)
	switch event {
	case pir.EventPIRCreated:
		return Email{
			Subject: fmt.Sprintf("New compliance request for %s", req.ProductName),
			HTML: fmt.Sprintf(
				`<p>%s requests product compliance information for <strong>%s</strong>.</p>`+
					`<p><a href="%s">Open the request</a> to answer the questionnaire.</p>`,
				counterpart, req.ProductName, link),
		}
	case pir.EventResponseSubmitted:
		return Email{
			Subject: fmt.Sprintf("Responses submitted for %s", req.ProductName),
			HTML: fmt.Sprintf(
				`<p>%s submitted responses for <strong>%s</strong>.</p>`+
					`<p><a href="%s">Review the responses</a>.</p>`,
				counterpart, req.ProductName, link),
		}
	case pir.EventRevisionRequested:
		return Email{
			Subject: fmt.Sprintf("Revision requested for %s", req.ProductName),
			HTML: fmt.Sprintf(
				`<p>%s flagged one or more answers for <strong>%s</strong>.</p>`+
					`<p><a href="%s">See the flagged answers</a> and resubmit.</p>`,
				counterpart, req.ProductName, link),
		}
	case pir.EventResponseResubmitted:
		return Email{
			Subject: fmt.Sprintf("Responses resubmitted for %s", req.ProductName),
			HTML: fmt.Sprintf(
				`<p>%s resubmitted responses for <strong>%s</strong> after addressing your flags.</p>`+
					`<p><a href="%s">Continue the review</a>.</p>`,
				counterpart, req.ProductName, link),
		}
	case pir.EventReviewCompleted:
		return Email{
			Subject: fmt.Sprintf("Review completed for %s: %s", req.ProductName, req.Status),
			HTML: fmt.Sprintf(
				`<p>%s completed the review of <strong>%s</strong>. Final status: <strong>%s</strong>.</p>`+
					`<p><a href="%s">View the request</a>.</p>`,
				counterpart, req.ProductName, req.Status, link),
		}
	default:
		return Email{
			Subject: fmt.Sprintf("Update on compliance request for %s", req.ProductName),
			HTML:    fmt.Sprintf(`<p>Status changed to %s.</p><p><a href="%s">View</a>.</p>`, req.Status, link),
		}
	}
}
