package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotKeyFormat(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "ads-data-snapshot-2025-03-14-092653.json", snapshotKey(ts))
}

func TestSnapshotKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2025, 3, 14, 14, 26, 53, 0, loc)
	assert.Equal(t, "ads-data-snapshot-2025-03-14-092653.json", snapshotKey(ts))
}
