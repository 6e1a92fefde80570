// Package orchestrator is the retrieval policy layer invoked by the
// external tool-calling system. It enforces the request guardrails,
// resolves the company, locates filings through the appropriate locator,
// applies the per-user idempotency check, and triggers best-effort
// downstream summarization.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/finsight/filings/pkg/config"
	"github.com/finsight/filings/pkg/edgar"
	"github.com/finsight/filings/pkg/models"
	"github.com/finsight/filings/pkg/store"
	"github.com/finsight/filings/pkg/summarize"
)

// State is a retrieval request's position in its lifecycle. Intermediate
// states are recorded on the Result so tests and callers can observe how
// far a request progressed, not just its final outcome.
type State string

const (
	StateReceived            State = "received"
	StateGuardrailChecked    State = "guardrail_checked"
	StateResolving           State = "resolving"
	StateLocating            State = "locating"
	StateFetching            State = "fetching"
	StateCompleted           State = "completed"
	StateRejected            State = "rejected"
	StatePartialFailure      State = "partial_failure"
	StateNeedsDisambiguation State = "needs_disambiguation"
)

// Guardrail violation kinds.
const (
	ViolationRequestLimit       = "request_limit"
	ViolationDateSpan           = "date_span"
	ViolationConversationBudget = "conversation_budget"
)

// GuardrailViolation rejects a request before any network work begins.
// The message is written for the calling agent: it states which ceiling
// was hit and what corrective request to issue next.
type GuardrailViolation struct {
	Kind    string
	Message string
}

func (e *GuardrailViolation) Error() string { return e.Message }

// Request is one retrieval request from the tool-calling layer. A date
// range is in effect when both StartDate and EndDate are set; otherwise
// the recent-filings path is taken with Limit (default 1).
type Request struct {
	UserID         string
	ConversationID string
	Company        string // free-text name or ticker
	FormType       string // canonical code, e.g. "10-K"
	Limit          int
	StartDate      string // ISO date, inclusive
	EndDate        string // ISO date, inclusive
}

func (r Request) hasDateRange() bool { return r.StartDate != "" && r.EndDate != "" }

// Result is the outcome of a retrieval request.
type Result struct {
	State      State
	Company    *models.CompanyInfo
	Candidates []models.CompanyInfo // populated when disambiguation is needed
	Filings    []models.Filing
	Stored     int // filings newly persisted by this request
}

// Service wires the resolver, locators, filing store, and summarization
// dispatcher behind the guardrail policy.
type Service struct {
	client     *edgar.Client
	store      store.Store
	summarizer *summarize.Dispatcher // optional
	caps       config.Guardrails
	log        *slog.Logger

	mu    sync.Mutex
	usage map[string]int // conversationID -> filings fetched so far
}

// NewService creates the orchestrator. The summarizer may be nil, in
// which case no downstream dispatch happens.
func NewService(client *edgar.Client, st store.Store, summarizer *summarize.Dispatcher, caps config.Guardrails, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		client:     client,
		store:      st,
		summarizer: summarizer,
		caps:       caps,
		log:        log,
		usage:      make(map[string]int),
	}
}

// Retrieve satisfies one retrieval request end to end. Guardrails run
// before any resolution or location work; a violation is returned as both
// a Rejected result and a *GuardrailViolation error. Resolution ambiguity
// is surfaced for disambiguation, never guessed away. Filings the user
// already holds are served from the store without touching EDGAR; only
// the remainder is fetched, stored, and dispatched for summarization. A
// filing whose fetch failed is reported with the content sentinel; the
// request as a whole still succeeds with state PartialFailure.
func (s *Service) Retrieve(ctx context.Context, req Request) (*Result, error) {
	res := &Result{State: StateReceived}

	limit := req.Limit
	if limit <= 0 {
		limit = 1
	}

	if v := s.checkGuardrails(req, limit); v != nil {
		res.State = StateRejected
		return res, v
	}
	res.State = StateGuardrailChecked

	res.State = StateResolving
	candidates, err := s.client.ResolveCompany(ctx, req.Company)
	if err != nil {
		return res, err
	}
	if len(candidates) > 1 {
		res.State = StateNeedsDisambiguation
		res.Candidates = candidates
		return res, nil
	}
	company := candidates[0]
	res.Company = &company

	res.State = StateLocating
	var filings []models.Filing
	if req.hasDateRange() {
		filings, err = s.client.LocateInRange(ctx, company.CIK, req.FormType, req.StartDate, req.EndDate)
	} else {
		filings, err = s.client.LocateRecent(ctx, company.CIK, req.FormType, limit)
	}
	if err != nil {
		// Partial batches are discarded: the locate call commits all of
		// its filings or none.
		return res, err
	}

	// Idempotency runs on the located metadata, before any document
	// fetch: a filing the user already holds is served from the store and
	// never re-downloaded. Only the remainder gets content filled.
	res.State = StateFetching
	held := make([]bool, len(filings))
	fetchIdx := make([]int, 0, len(filings))
	for i, f := range filings {
		stored, ok, err := s.store.Get(ctx, req.UserID, f.AccessionNumber)
		if err != nil {
			return res, fmt.Errorf("check existing filing %s: %w", f.AccessionNumber, err)
		}
		if ok {
			filings[i] = stored
			held[i] = true
			continue
		}
		fetchIdx = append(fetchIdx, i)
	}

	fetch := make([]models.Filing, len(fetchIdx))
	for j, i := range fetchIdx {
		fetch[j] = filings[i]
	}
	if err := s.client.FillContent(ctx, fetch); err != nil {
		return res, err
	}
	for j, i := range fetchIdx {
		filings[i] = fetch[j]
	}

	partial := false
	for i, f := range filings {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !f.ContentOK() {
			partial = true
		}
		res.Filings = append(res.Filings, f)
		if held[i] {
			continue
		}

		if err := s.store.Save(ctx, req.UserID, f); err != nil {
			return res, fmt.Errorf("store filing %s: %w", f.AccessionNumber, err)
		}
		res.Stored++

		if s.summarizer != nil && f.ContentOK() {
			s.summarizer.Dispatch(f.FullText)
		}
	}

	s.mu.Lock()
	s.usage[req.ConversationID] += res.Stored
	s.mu.Unlock()

	if partial {
		res.State = StatePartialFailure
	} else {
		res.State = StateCompleted
	}
	return res, nil
}

// checkGuardrails enforces, in order: the per-request filing cap, the
// date-span cap, and the per-conversation cumulative cap.
func (s *Service) checkGuardrails(req Request, limit int) *GuardrailViolation {
	if !req.hasDateRange() && limit > s.caps.MaxFilingsPerRequest {
		return &GuardrailViolation{
			Kind: ViolationRequestLimit,
			Message: fmt.Sprintf(
				"Requested %d filings but the per-request maximum is %d. Retry with a limit of at most %d.",
				limit, s.caps.MaxFilingsPerRequest, s.caps.MaxFilingsPerRequest),
		}
	}

	if req.hasDateRange() {
		if v := s.checkDateSpan(req.StartDate, req.EndDate); v != nil {
			return v
		}
	}

	s.mu.Lock()
	used := s.usage[req.ConversationID]
	s.mu.Unlock()

	projected := limit
	if req.hasDateRange() {
		// A range request's match count is unknown up front; at minimum
		// one more filing must fit in the budget.
		projected = 1
	}
	if used+projected > s.caps.MaxFilingsPerConversation {
		remaining := s.caps.MaxFilingsPerConversation - used
		if remaining < 0 {
			remaining = 0
		}
		return &GuardrailViolation{
			Kind: ViolationConversationBudget,
			Message: fmt.Sprintf(
				"This conversation has already fetched %d of the %d filings it may fetch; at most %d more can be retrieved. Reduce the request or start a new conversation.",
				used, s.caps.MaxFilingsPerConversation, remaining),
		}
	}
	return nil
}

// checkDateSpan rejects spans over the ceiling with a message proposing
// two half-span sub-requests split at start + (end-start)/2, and instructs
// the caller to obtain confirmation before issuing the second.
func (s *Service) checkDateSpan(startDate, endDate string) *GuardrailViolation {
	const iso = "2006-01-02"
	start, err := time.Parse(iso, startDate)
	if err != nil {
		return nil // malformed dates fail in the locator with a proper error
	}
	end, err := time.Parse(iso, endDate)
	if err != nil {
		return nil
	}

	if end.Before(start.AddDate(s.caps.MaxDateSpanYears, 0, 0)) || end.Equal(start.AddDate(s.caps.MaxDateSpanYears, 0, 0)) {
		return nil
	}

	mid := start.Add(end.Sub(start) / 2)
	return &GuardrailViolation{
		Kind: ViolationDateSpan,
		Message: fmt.Sprintf(
			"The requested range %s to %s exceeds the %d-year maximum span. Split it into two requests: %s to %s, then %s to %s. Ask the user to confirm before issuing the second request.",
			startDate, endDate, s.caps.MaxDateSpanYears,
			startDate, mid.Format(iso), mid.Format(iso), endDate),
	}
}

// Usage returns the number of filings fetched so far in a conversation.
func (s *Service) Usage(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage[conversationID]
}
