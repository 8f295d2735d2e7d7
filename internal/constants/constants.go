package constants

import "time"

var DatabaseConfig = struct {
	DefaultPath     string
	BusyTimeout     time.Duration
	PingTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	DefaultPath:     "data/songs.db",
	BusyTimeout:     5 * time.Second,
	PingTimeout:     5 * time.Second,
	MaxOpenConns:    10,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

var LLMConfig = struct {
	DefaultGeminiModel string
	DefaultOpenAIModel string
	DefaultDailyLimit  int
	RequestTimeout     time.Duration
	MaxOutputTokens    int
	Temperature        float32
}{
	DefaultGeminiModel: "gemini-1.5-flash",
	DefaultOpenAIModel: "gpt-4o-mini",
	DefaultDailyLimit:  20,
	RequestTimeout:     30 * time.Second,
	MaxOutputTokens:    64,
	Temperature:        0.2,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간
	RateLimitTimeout:    1 * time.Hour,    // 429 전용 타임아웃
	HealthCheckInterval: 10 * time.Minute, // Health Check 주기
}

var SuggestionLockConfig = struct {
	KeyPrefix string
	TTL       time.Duration
}{
	KeyPrefix: "tjchart:suggest:",
	TTL:       2 * time.Minute,
}

var RedisConfig = struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}{
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolSize:     10,
}

var TJMediaConfig = struct {
	DefaultChartURL string
	Timeout         time.Duration
	SuccessCode     string
	UserAgent       string
}{
	DefaultChartURL: "https://www.tjmedia.com/legacy/api/topAndHot100",
	Timeout:         15 * time.Second,
	SuccessCode:     "99",
	UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
}

var BatchConfig = struct {
	SuggestionWorkers int
}{
	SuggestionWorkers: 2,
}
