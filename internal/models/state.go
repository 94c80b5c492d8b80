package models

// UserState holds one user's dialogue session. A user has at most one
// active session; starting a new flow replaces it.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	Flow        string                 `json:"flow"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

// Set stores a collected value, allocating TempData lazily.
func (s *UserState) Set(key string, value interface{}) {
	if s.TempData == nil {
		s.TempData = make(map[string]interface{})
	}
	s.TempData[key] = value
}

// GetString returns a string value from TempData or "".
func (s *UserState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if v, ok := s.TempData[key].(string); ok {
		return v
	}
	return ""
}

// GetInt64 returns an integer value from TempData. Числа приходят из
// JSON как float64, поэтому оба варианта допустимы.
func (s *UserState) GetInt64(key string) int64 {
	if s.TempData == nil {
		return 0
	}
	switch v := s.TempData[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
