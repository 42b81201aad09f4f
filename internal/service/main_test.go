package service

import (
	"os"
	"testing"

	"github.com/mmynk/finbook/pkg/logging"
)

func TestMain(m *testing.M) {
	// Service operations log via slog; route them through the shared setup
	// so failures are readable when run with -v.
	logging.Setup()
	os.Exit(m.Run())
}
