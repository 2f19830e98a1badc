package worker

import (
	"github.com/spec-kit/scan-token-service/internal/service"
)

// StartScanRecorder registers the handlers that persist completed scans.
func StartScanRecorder(recorder *service.ScanRecorder) {
	if recorder == nil {
		return
	}
	recorder.RegisterHandlers()
}
