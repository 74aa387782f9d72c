package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStamp(t *testing.T) {
	now := time.Date(2021, time.March, 7, 9, 5, 3, 0, time.Local)
	assert.Equal(t, "07.03.2021-09:05:03", Stamp(now))

	type test struct {
		prefix string
		dir    string
	}

	tests := map[string]test{
		"directory": {
			prefix: "logs/",
			dir:    "logs/07.03.2021-09:05:03",
		},
		"prefix": {
			prefix: "logs/blobs-",
			dir:    "logs/blobs-07.03.2021-09:05:03",
		},
		"empty": {
			dir: "07.03.2021-09:05:03",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := RunDir(tt.prefix, now)
			assert.Equal(t, tt.dir, dir)
			parsed, err := ParseStamp(dir)
			require.NoError(t, err)
			assert.True(t, now.Equal(parsed))
		})
	}
}
