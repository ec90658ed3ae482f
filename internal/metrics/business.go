package metrics

// IncrementBoardCreated increments the board creation counter
func (m *Metrics) IncrementBoardCreated() {
	m.safeExecute("IncrementBoardCreated", func() {
		m.BoardCreatedTotal.Inc()
	})
}

// IncrementBoardShared increments the board share counter
func (m *Metrics) IncrementBoardShared() {
	m.safeExecute("IncrementBoardShared", func() {
		m.BoardSharedTotal.Inc()
	})
}

// IncrementPermissionDenied increments the rejected-access counter
func (m *Metrics) IncrementPermissionDenied() {
	m.safeExecute("IncrementPermissionDenied", func() {
		m.PermissionDenials.Inc()
	})
}

// SetBoardsTotal sets the total boards gauge
func (m *Metrics) SetBoardsTotal(count int64) {
	m.safeExecute("SetBoardsTotal", func() {
		m.BoardsTotal.Set(float64(count))
	})
}

// SetSharesTotal sets the total shares gauge
func (m *Metrics) SetSharesTotal(count int64) {
	m.safeExecute("SetSharesTotal", func() {
		m.SharesTotal.Set(float64(count))
	})
}
