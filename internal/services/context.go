package services

import "context"

type contextKey string

const (
	itemIDKey    contextKey = "item_id"
	itemKindKey  contextKey = "item_kind"
	stageKey     contextKey = "stage"
	sessionIDKey contextKey = "session_id"
	artistIDKey  contextKey = "artist_id"
)

// WithItemID annotates context with the catalog item identifier.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the catalog item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(itemIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithItemKind annotates context with the catalog item kind (master/release).
func WithItemKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, itemKindKey, kind)
}

// ItemKindFromContext returns the item kind if present.
func ItemKindFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemKindKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the scan stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSessionID annotates context with the scan session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the scan session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithArtistID annotates context with the target artist.
func WithArtistID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, artistIDKey, id)
}

// ArtistIDFromContext returns the target artist if present.
func ArtistIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(artistIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
