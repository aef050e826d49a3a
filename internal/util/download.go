package util

import (
	"net/url"
	"path"
)

const DefaultDownloadName = "resume.pdf"

// DownloadName is the file name a downloaded CV is saved under: the last
// path segment of its URL.
func DownloadName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultDownloadName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return DefaultDownloadName
	}
	return name
}
