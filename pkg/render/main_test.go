package render

import (
	"io"
	"os"
	"testing"

	"github.com/taigrr/zonevis/pkg/log"
)

func TestMain(m *testing.M) {
	log.SetSink(io.Discard)
	os.Exit(m.Run())
}
