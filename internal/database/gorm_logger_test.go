package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	statement := func() (string, int64) { return "SELECT * FROM recipes", 3 }
	slow := time.Now().Add(-time.Second)

	tests := []struct {
		name   string
		level  logger.LogLevel
		begin  time.Time
		err    error
		expect string
	}{
		{"failed query", logger.Warn, time.Now(), errors.New("syntax error"), "query failed"},
		{"record not found is quiet", logger.Warn, time.Now(), gorm.ErrRecordNotFound, ""},
		{"slow query", logger.Warn, slow, nil, "slow query"},
		{"fast query at warn", logger.Warn, time.Now(), nil, ""},
		{"fast query at info", logger.Info, time.Now(), nil, `"message":"query"`},
		{"silent", logger.Silent, slow, errors.New("syntax error"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewGormLogger(zerolog.New(&buf), logger.Warn).LogMode(tt.level)

			l.Trace(context.Background(), tt.begin, statement, tt.err)

			if tt.expect == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.expect)
			assert.Contains(t, buf.String(), "SELECT * FROM recipes")
			assert.Contains(t, buf.String(), `"component":"gorm"`)
		})
	}
}

func TestGormLoggerMessages(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf), logger.Warn)

	l.Info(context.Background(), "ignored %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "replica %s lagging", "db2")
	assert.Contains(t, buf.String(), "replica db2 lagging")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
