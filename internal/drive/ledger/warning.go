package ledger

const (
	downloadWarning = "Download in progress, are you sure?"
	uploadWarning   = "Upload in progress, are you sure?"
	transferWarning = "Transfer is in progress, are you sure?"
)

// NavigationWarning derives the single message a page-unload (or process
// exit) interceptor should show while operations are in flight. Downloads
// take precedence over uploads, uploads over transfers. Empty string means
// nothing is running.
func NavigationWarning(uploads *Uploads, downloads *Downloads, transfers *Transfers) string {
	switch {
	case downloads.Count() > 0:
		return downloadWarning
	case uploads.Count() > 0:
		return uploadWarning
	case transfers.Count() > 0:
		return transferWarning
	default:
		return ""
	}
}
