package logutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Values groups fields under one "values" object so high-volume log lines
// (webhook ingress, dispatch) keep their payload fields in a single nested
// key. No reflection involved.
func Values(fields ...zap.Field) zap.Field {
	return Grouped("values", fields...)
}

// Grouped nests fields under an arbitrary key.
func Grouped(key string, fields ...zap.Field) zap.Field {
	return zap.Object(key, zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		for _, f := range fields {
			f.AddTo(enc)
		}
		return nil
	}))
}
