//go:build !linux

package agentfront

func processRSSBytes() (rssBytes uint64, ok bool) {
	return 0, false
}
