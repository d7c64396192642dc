package modes

// Config is the per-request mode configuration bag. Values arrive as decoded
// JSON, so numbers may be float64 and lists may be []any.
type Config map[string]any

// String returns the string at key, or def.
func (c Config) String(key, def string) string {
	if v, ok := c[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the integer at key, accepting JSON float64, or def.
func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float returns the float at key, or def.
func (c Config) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Bool returns the bool at key, or def.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

// StringSlice returns the string list at key, tolerating []any from JSON.
func (c Config) StringSlice(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Models resolves the participant model list. "models" is the canonical key;
// "councilModels" is accepted for compatibility with council-style clients.
func (c Config) Models() []string {
	if ms := c.StringSlice("models"); len(ms) > 0 {
		return ms
	}
	return c.StringSlice("councilModels")
}
