package registry

import (
	"context"
	"fmt"
	"strings"
)

type nugetIndex struct {
	Items []struct {
		Items []struct {
			CatalogEntry struct {
				ID string `json:"@id"`
			} `json:"catalogEntry"`
		} `json:"items"`
	} `json:"items"`
}

type nugetCatalogEntry struct {
	LicenseExpression string `json:"licenseExpression"`
	ProjectURL        string `json:"projectUrl"`
}

// dotnetInfo walks the NuGet registration index to the latest catalog entry
// and reads its license expression and project URL. Registration pages can
// omit inline entries, in which case the package stays unresolved.
func (c *Client) dotnetInfo(ctx context.Context, name string) (Info, error) {
	var index nugetIndex
	url := fmt.Sprintf("%s/v3/registration5-semver1/%s/index.json", c.NuGetBaseURL, strings.ToLower(name))
	if err := c.getJSON(ctx, url, &index); err != nil {
		return Info{}, err
	}

	if len(index.Items) == 0 {
		return Info{License: "Unknown"}, nil
	}
	latestPage := index.Items[len(index.Items)-1]
	if len(latestPage.Items) == 0 {
		return Info{License: "Unknown"}, nil
	}
	entryURL := latestPage.Items[len(latestPage.Items)-1].CatalogEntry.ID
	if entryURL == "" {
		return Info{License: "Unknown"}, nil
	}

	var entry nugetCatalogEntry
	if err := c.getJSON(ctx, entryURL, &entry); err != nil {
		return Info{}, err
	}

	license := entry.LicenseExpression
	if license == "" {
		license = "Unknown"
	}

	return Info{License: license, URL: entry.ProjectURL}, nil
}
