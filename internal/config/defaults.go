package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:          "http://127.0.0.1:5000",
			RequestTimeoutMS: 30000,
		},
		Session: SessionConfig{
			RetryIntervalMS: 2500,
		},
		Beep: BeepConfig{
			Enable:      true,
			FrequencyHz: 1000,
			Volume:      0.18,
			SampleRate:  16000,
		},
		Words: WordsConfig{},
	}
}
