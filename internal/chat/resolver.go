package chat

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"foodwaste/internal/core"
	"foodwaste/internal/llm"
)

// SystemPrompt is the instruction sent with every hosted-assistant request.
const SystemPrompt = "You're a food waste expert assistant."

const answerMarker = "Answer:"

// Mode gates which generative stages the resolver may try.
type Mode string

const (
	// ModeOffline answers from data and canned responses only.
	ModeOffline Mode = "offline"
	// ModeOnline tries the hosted assistant, then the local model.
	ModeOnline Mode = "online"
	// ModeAuto tries the local model but never the hosted assistant.
	ModeAuto Mode = "auto"
)

// ParseMode matches s ignoring case and surrounding space. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeOffline, ModeOnline, ModeAuto:
		return m, nil
	default:
		return "", &core.ValidationError{Field: "chat_mode", Message: fmt.Sprintf("unknown chat mode %q", s)}
	}
}

// Stage names the step of the chain that produced a reply.
type Stage string

const (
	StageData   Stage = "data"
	StageRemote Stage = "remote"
	StageLocal  Stage = "local"
	StageCanned Stage = "canned"
)

// Reply is a resolved answer and where it came from.
type Reply struct {
	Text     string
	Stage    Stage
	Category string // canned category, set only for StageCanned
}

// Resolver answers free-text questions by trying, in order, a data-derived
// answer, the hosted assistant, the local model and a canned response. The
// last stage cannot fail, so neither can Resolve.
type Resolver struct {
	mode      Mode
	remote    llm.ChatClient
	local     llm.Generator
	responses Responses
	observe   func(Stage)
	// entryContext prefixes hosted-assistant queries with a data summary.
	entryContext bool

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Resolver)

// WithRemote sets the hosted assistant used in online mode.
func WithRemote(c llm.ChatClient) Option {
	return func(r *Resolver) { r.remote = c }
}

// WithLocal sets the local model used in online and auto modes.
func WithLocal(g llm.Generator) Option {
	return func(r *Resolver) { r.local = g }
}

// WithEntryContext sends the hosted assistant a summary of the logged
// entries ahead of the question. Without it the query is sent as typed.
func WithEntryContext() Option {
	return func(r *Resolver) { r.entryContext = true }
}

func WithResponses(resp Responses) Option {
	return func(r *Resolver) {
		if len(resp) > 0 {
			r.responses = resp
		}
	}
}

// WithSeed makes canned answer selection reproducible.
func WithSeed(seed int64) Option {
	return func(r *Resolver) {
		r.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}
}

// WithObserver registers a callback invoked with the answering stage.
func WithObserver(fn func(Stage)) Option {
	return func(r *Resolver) { r.observe = fn }
}

func NewResolver(mode Mode, opts ...Option) *Resolver {
	r := &Resolver{
		mode:      mode,
		responses: DefaultResponses(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return r
}

func (r *Resolver) Mode() Mode { return r.mode }

// Respond returns only the reply text.
func (r *Resolver) Respond(ctx context.Context, query string, entries []core.WasteEntry) string {
	return r.Resolve(ctx, query, entries).Text
}

// Resolve runs the chain for query. entries may be nil.
func (r *Resolver) Resolve(ctx context.Context, query string, entries []core.WasteEntry) Reply {
	reply := r.resolve(ctx, query, entries)
	if r.observe != nil {
		r.observe(reply.Stage)
	}
	slog.DebugContext(ctx, "Chat resolved", "chat_mode", string(r.mode), "chat_stage", string(reply.Stage))
	return reply
}

func (r *Resolver) resolve(ctx context.Context, query string, entries []core.WasteEntry) Reply {
	if text, ok := DataAnswer(query, entries); ok {
		return Reply{Text: text, Stage: StageData}
	}

	if r.mode == ModeOnline && r.remote != nil {
		user := query
		if r.entryContext {
			user = WithDataContext(query, entries)
		}
		answer, err := r.remote.Chat(ctx, SystemPrompt, user)
		if err == nil && strings.TrimSpace(answer) != "" {
			return Reply{Text: strings.TrimSpace(answer), Stage: StageRemote}
		}
		slog.DebugContext(ctx, "Hosted assistant unavailable, falling through", "error", err)
	}

	if r.mode != ModeOffline && r.local != nil {
		generated, err := r.local.Generate(ctx, LocalPrompt(query))
		if err == nil {
			if answer := ExtractAnswer(generated); answer != "" {
				return Reply{Text: answer, Stage: StageLocal}
			}
		}
		slog.DebugContext(ctx, "Local model produced no answer, falling through", "error", err)
	}

	category := Classify(query)
	return Reply{Text: r.pick(category), Stage: StageCanned, Category: category}
}

func (r *Resolver) pick(category string) string {
	answers := r.responses[category]
	if len(answers) == 0 {
		answers = DefaultResponses()[category]
	}
	if len(answers) == 1 {
		return answers[0]
	}
	r.mu.Lock()
	i := r.rng.IntN(len(answers))
	r.mu.Unlock()
	return answers[i]
}

// DataAnswer answers the three statistic questions from entries. It reports
// false when entries is empty or no trigger phrase matches.
func DataAnswer(query string, entries []core.WasteEntry) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "total waste"):
		return fmt.Sprintf("Total recorded waste: %.2f kg", core.Summarize(entries).TotalKg), true
	case strings.Contains(q, "most wasted"):
		return "Most wasted category: " + core.Summarize(entries).TopCategory, true
	case strings.Contains(q, "average"):
		return fmt.Sprintf("Average daily waste: %.2f kg", core.Summarize(entries).AvgDailyKg), true
	}
	return "", false
}

// LocalPrompt builds the local model prompt for query.
func LocalPrompt(query string) string {
	return "Food waste question: " + query + "\n" + answerMarker
}

// ExtractAnswer returns the trimmed text after the last "Answer:" marker, or
// the whole trimmed text when the marker is absent.
func ExtractAnswer(generated string) string {
	if i := strings.LastIndex(generated, answerMarker); i >= 0 {
		generated = generated[i+len(answerMarker):]
	}
	return strings.TrimSpace(generated)
}
