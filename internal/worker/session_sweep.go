package worker

import (
	"context"
	"time"

	authsvc "lead_center/internal/api/auth/service"
	"lead_center/internal/logger"
)

// SessionSweepWorker worker dọn dẹp các phiên đăng nhập đã hết hạn.
// Chạy định kỳ, gọi Sweep trên session store được inject.
// Với MongoSessionStore đây là lớp bảo hiểm thứ hai bên cạnh TTL index,
// với MemorySessionStore đây là cơ chế dọn dẹp duy nhất.
type SessionSweepWorker struct {
	store    authsvc.SessionStore
	interval time.Duration // Khoảng thời gian giữa các lần quét
}

// NewSessionSweepWorker tạo mới SessionSweepWorker
// Tham số:
//   - store: session store cần dọn dẹp
//   - interval: Khoảng thời gian giữa các lần quét (tối thiểu 30 giây, mặc định 5 phút)
//
// Trả về:
//   - *SessionSweepWorker: Instance mới của SessionSweepWorker
func NewSessionSweepWorker(store authsvc.SessionStore, interval time.Duration) *SessionSweepWorker {
	if interval < 30*time.Second {
		interval = 5 * time.Minute
	}
	return &SessionSweepWorker{
		store:    store,
		interval: interval,
	}
}

// Start bắt đầu background worker quét phiên hết hạn.
// Worker dừng khi context bị cancel.
func (w *SessionSweepWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🧹 [SESSION_SWEEP] Starting Session Sweep Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [SESSION_SWEEP] Session Sweep Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [SESSION_SWEEP] Panic khi quét phiên hết hạn, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				removed, err := w.store.Sweep(ctx)
				if err != nil {
					log.WithError(err).Error("🧹 [SESSION_SWEEP] Failed to sweep expired sessions")
					return
				}

				if removed > 0 {
					log.WithFields(map[string]interface{}{
						"removedCount": removed,
					}).Info("🧹 [SESSION_SWEEP] Removed expired sessions")
				}
				// removed = 0 thì không log để giảm noise
			}()
		}
	}
}
