package logger

import "go.uber.org/zap"

// New builds the zap logger every component receives through its
// constructor. The local environment gets the development encoder.
func New(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
