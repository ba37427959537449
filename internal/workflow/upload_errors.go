package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/butinmaker/butinmaker/internal/taxonomy"
	"github.com/butinmaker/butinmaker/internal/tracker"
)

// UploadMessage turns an upload failure into the message shown to the
// user. Tracker status codes get a fixed explanation; other errors keep
// their own text.
func UploadMessage(err error, ct taxonomy.ContentType) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, taxonomy.ErrCategoryNotFound) {
		return categoryMessage(ct)
	}

	var te *tracker.Error
	if !errors.As(err, &te) {
		return err.Error()
	}

	switch te.StatusCode {
	case 401:
		return "Invalid API key. Check your settings."
	case 403:
		return "API key revoked or insufficient permissions."
	case 409:
		return "This torrent already exists on La Cale (same infohash)."
	case 429:
		return "Limit of 30 requests/minute exceeded. Please wait before retrying."
	case 404:
		if strings.Contains(strings.ToLower(te.Message), "categor") {
			return categoryMessage(ct)
		}
	}

	if te.Message != "" {
		return te.Message
	}
	return fmt.Sprintf("Server error (%d)", te.StatusCode)
}

func categoryMessage(ct taxonomy.ContentType) string {
	kind := "movies"
	if ct == taxonomy.ContentTV {
		kind = "series"
	}
	return fmt.Sprintf("Category not found for %s. Check the tracker configuration.", kind)
}
