package domain

// LibraryScan is the result of reading a mounted card's Steam library
// metadata. It is transient: the reconciler folds it into the store and
// the value is discarded.
type LibraryScan struct {
	ContentID string
	Label     string
	Apps      []AppState
}

// AppState describes one installed app as read from its .acf descriptor.
type AppState struct {
	AppID      string
	Name       string
	SizeOnDisk int64
}

// AppIDs returns the app ids present in the scan, in descriptor order.
func (s *LibraryScan) AppIDs() []string {
	ids := make([]string, 0, len(s.Apps))
	for _, app := range s.Apps {
		ids = append(ids, app.AppID)
	}
	return ids
}
