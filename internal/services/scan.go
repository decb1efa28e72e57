package services

import (
	"fmt"
	"os"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	clamd "github.com/dutchcoders/go-clamd"
	"go.uber.org/zap"
)

// Scanner checks local files with a ClamAV daemon before they leave the
// machine.
type Scanner struct {
	clamd *clamd.Clamd
	log   *zap.Logger
}

func NewScanner(clamAvURL string, log *zap.Logger) *Scanner {
	return &Scanner{clamd: clamd.NewClamd(clamAvURL), log: log}
}

// ScanFile streams the file to clamd. It returns apperr.ErrInfected when a
// signature matches.
func (s *Scanner) ScanFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	abort := make(chan bool, 1)
	response, err := s.clamd.ScanStream(f, abort)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	var scanErr error
	for res := range response {
		switch res.Status {
		case clamd.RES_FOUND:
			s.log.Warn("virus detected", zap.String("file", path), zap.String("signature", res.Description))
			scanErr = fmt.Errorf("%w: %s (%s)", apperr.ErrInfected, path, res.Description)
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			if scanErr == nil {
				scanErr = fmt.Errorf("scan failed: %s", res.Description)
			}
		}
	}
	if scanErr == nil {
		s.log.Info("scan finished", zap.String("file", path), zap.String("status", "clean"))
	}
	return scanErr
}
