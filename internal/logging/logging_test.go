package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yacobolo/turf/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithSink_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      logging.Options
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default", opts: logging.Options{}, wantInfo: true},
		{name: "debug", opts: logging.Options{Debug: true}, wantDebug: true, wantInfo: true},
		{name: "quiet wins over debug", opts: logging.Options{Debug: true, Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logging.NewWithSink(tt.opts, zapcore.AddSync(&buf), false)

			log.Debug("debug line")
			log.Info("info line")
			log.Error("error line")
			_ = log.Sync()

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")), out)
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")), out)
			assert.Contains(t, out, "error line")
		})
	}
}

func TestNewWithSink_Format(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithSink(logging.Options{}, zapcore.AddSync(&buf), false)

	log.Named("generate").Info("Wrote", zap.String("file", "button_turf.go"))
	_ = log.Sync()

	assert.Equal(t, "INFO\tturf.generate\tWrote\t{\"file\": \"button_turf.go\"}\n", buf.String())
}
