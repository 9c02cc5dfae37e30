package passwordreset

import (
	"context"
	"fmt"
	"resetme/internal/core/domain/user"
	"sync"
	"time"
)

type FakeRepository struct {
	Tokens      []ResetToken
	ReturnError bool
	IssueCalls  int
	lock        sync.Mutex
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Tokens: make([]ResetToken, 0, 10)}
}

func (r *FakeRepository) Issue(ctx context.Context, input IssueInput) (t ResetToken, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.IssueCalls++
	if r.ReturnError {
		return t, fmt.Errorf("could not issue token for user %d", input.UserID)
	}
	kept := make([]ResetToken, 0, len(r.Tokens)+1)
	for _, existing := range r.Tokens {
		if existing.UserID == input.UserID {
			continue
		}
		if existing.Token == input.Token {
			return t, ErrTokenAlreadyExists
		}
		kept = append(kept, existing)
	}
	t = ResetToken{
		Token:     input.Token,
		UserID:    input.UserID,
		ExpiresAt: input.ExpiresAt(),
		CreatedAt: input.CreatedAt,
	}
	r.Tokens = append(kept, t)
	return t, nil
}

func (r *FakeRepository) LookupValid(ctx context.Context, token Token, at time.Time) (user.ID, error) {
	if r.ReturnError {
		return 0, fmt.Errorf("could not look up token")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range r.Tokens {
		if t.Token == token && t.IsValidAt(at) {
			return t.UserID, nil
		}
	}
	return 0, ErrInvalidOrExpiredToken
}

func (r *FakeRepository) Consume(ctx context.Context, token Token) error {
	if r.ReturnError {
		return fmt.Errorf("could not consume token")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, t := range r.Tokens {
		if t.Token == token {
			r.Tokens[ix].Used = true
		}
	}
	return nil
}

func (r *FakeRepository) Claim(ctx context.Context, token Token, at time.Time) (user.ID, error) {
	if r.ReturnError {
		return 0, fmt.Errorf("could not claim token")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, t := range r.Tokens {
		if t.Token == token && t.IsValidAt(at) {
			r.Tokens[ix].Used = true
			return t.UserID, nil
		}
	}
	return 0, ErrInvalidOrExpiredToken
}

func (r *FakeRepository) PurgeExpiredOrUsed(ctx context.Context, at time.Time) (int64, error) {
	if r.ReturnError {
		return 0, fmt.Errorf("could not purge tokens")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	kept := make([]ResetToken, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		if !t.IsPurgeableAt(at) {
			kept = append(kept, t)
		}
	}
	purged := int64(len(r.Tokens) - len(kept))
	r.Tokens = kept
	return purged, nil
}

func (r *FakeRepository) Get(token Token) (ResetToken, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range r.Tokens {
		if t.Token == token {
			return t, true
		}
	}
	return ResetToken{}, false
}

func (r *FakeRepository) ForUser(id user.ID) []ResetToken {
	r.lock.Lock()
	defer r.lock.Unlock()
	tokens := make([]ResetToken, 0)
	for _, t := range r.Tokens {
		if t.UserID == id {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func (r *FakeRepository) Snapshot() []ResetToken {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]ResetToken(nil), r.Tokens...)
}

func (r *FakeRepository) Restore(tokens []ResetToken) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Tokens = append(make([]ResetToken, 0, len(tokens)), tokens...)
}

// FakeTokenGenerator returns the given tokens in order and repeats the last one
// when they run out.
type FakeTokenGenerator struct {
	Tokens []Token
	calls  int
	lock   sync.Mutex
}

func NewFakeTokenGenerator(tokens ...Token) *FakeTokenGenerator {
	if len(tokens) == 0 {
		tokens = []Token{"test-password-reset-token"}
	}
	return &FakeTokenGenerator{Tokens: tokens}
}

func (g *FakeTokenGenerator) GenerateToken() Token {
	g.lock.Lock()
	defer g.lock.Unlock()
	ix := g.calls
	if ix >= len(g.Tokens) {
		ix = len(g.Tokens) - 1
	}
	g.calls++
	return g.Tokens[ix]
}

func (g *FakeTokenGenerator) Calls() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.calls
}

type SentResetLink struct {
	User  user.User
	Token Token
}

type FakeNotifier struct {
	ResetLinks    []SentResetLink
	Confirmations []user.User
	ReturnError   bool
	lock          sync.Mutex
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) SendResetLink(ctx context.Context, u user.User, token Token) error {
	if n.ReturnError {
		return fmt.Errorf("could not send reset link to %s", u.Email)
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	n.ResetLinks = append(n.ResetLinks, SentResetLink{User: u, Token: token})
	return nil
}

func (n *FakeNotifier) SendResetConfirmation(ctx context.Context, u user.User) error {
	if n.ReturnError {
		return fmt.Errorf("could not send reset confirmation to %s", u.Email)
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	n.Confirmations = append(n.Confirmations, u)
	return nil
}

type FakeEventPublisher struct {
	Events      []Event
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeEventPublisher() *FakeEventPublisher {
	return &FakeEventPublisher{}
}

func (p *FakeEventPublisher) Publish(ctx context.Context, event Event) error {
	if p.ReturnError {
		return fmt.Errorf("could not publish %s", event.Type)
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.Events = append(p.Events, event)
	return nil
}
