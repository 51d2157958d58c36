package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders every record as one flat line. Groups become
// dotted keys; the key order is fixed by keyOrder with the rest sorted.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	f := make(fields, 16)
	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	f["level"] = normalizeLevel(r.Level.String())
	if isJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		f.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(prefix, a)
		return true
	})

	f.fillFromMeta(MetaFrom(ctx))
	f.compactRID(isJSON)
	f.setDefault("event", r.Message, "unknown")
	f.setDefault("component", "app")
	f.normalize()

	var line []byte
	if isJSON {
		var err error
		if line, err = encodeJSON(f, h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = encodeKV(f, h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// fields holds the values of one line. Empty strings and nils never land in it.
type fields map[string]any

func (f fields) add(prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := convert(key, v); ok {
		f[k] = val
	}
}

// convert maps a slog value onto a JSON friendly one. Durations turn into
// whole milliseconds under a *_ms key.
func convert(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return nonEmpty(key, strings.TrimSpace(v.String()))
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return nonEmpty(key, x.Error())
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return nonEmpty(key, x.String())
	default:
		return nonEmpty(key, fmt.Sprint(x))
	}
}

func nonEmpty(key, s string) (string, any, bool) {
	return key, s, s != ""
}

// durationKey renames duration attributes so every key carries the _ms unit.
func durationKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func (f fields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

// setDefault stores the first non-empty candidate when key is unset.
func (f fields) setDefault(key string, candidates ...string) {
	if f.str(key) != "" {
		return
	}
	for _, c := range candidates {
		if c != "" {
			f[key] = c
			return
		}
	}
}

// fillFromMeta copies request metadata without overriding explicit attrs.
func (f fields) fillFromMeta(m RequestMeta) {
	put := func(key string, v any, zero bool) {
		if _, set := f[key]; !set && !zero {
			f[key] = v
		}
	}
	put("rid", m.RID, m.RID == "")
	put("update_id", int64(m.UpdateID), m.UpdateID == 0)
	put("user_id", m.UserID, m.UserID == 0)
	put("chat_id", m.ChatID, m.ChatID == 0)
	put("handler", m.Handler, m.Handler == "")
}

// compactRID shortens the rid; JSON lines keep the original as rid_full.
func (f fields) compactRID(keepFull bool) {
	rid := f.str("rid")
	compact := CompactRID(rid)
	if rid == "" || compact == rid {
		return
	}
	if _, set := f["rid_full"]; keepFull && !set {
		f["rid_full"] = rid
	}
	f["rid"] = compact
}

// normalize maps enumerated values onto their canonical spelling. Unknown
// intents and outcomes are dropped; unknown statuses pass through.
func (f fields) normalize() {
	f["level"] = normalizeLevel(f.str("level"))
	if s := f.str("status"); s != "" {
		norm, _ := normalizeStatus(s)
		f["status"] = norm
	}
	for key, norm := range map[string]func(string) (string, bool){
		"intent":  normalizeIntent,
		"outcome": normalizeOutcome,
	} {
		v := f.str(key)
		if v == "" {
			continue
		}
		if canon, ok := norm(v); ok {
			f[key] = canon
		} else {
			delete(f, key)
		}
	}
}
