package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type npmResponse struct {
	License    json.RawMessage `json:"license"`
	Homepage   string          `json:"homepage"`
	Repository struct {
		URL string `json:"url"`
	} `json:"repository"`
}

// javascriptInfo fetches license and homepage for a package from the npm
// registry. The license field is either a string or an object with a type;
// the homepage falls back to the repository URL with git+ / .git trimmed.
func (c *Client) javascriptInfo(ctx context.Context, name string) (Info, error) {
	var data npmResponse
	url := fmt.Sprintf("%s/%s", c.NPMBaseURL, name)
	if err := c.getJSON(ctx, url, &data); err != nil {
		return Info{}, err
	}

	license := "Unknown"
	if len(data.License) > 0 {
		var asString string
		if err := json.Unmarshal(data.License, &asString); err == nil {
			license = asString
		} else {
			var asObject struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data.License, &asObject); err == nil && asObject.Type != "" {
				license = asObject.Type
			}
		}
	}
	if license == "" {
		license = "Unknown"
	}

	homepage := data.Homepage
	if homepage == "" {
		homepage = strings.TrimPrefix(data.Repository.URL, "git+")
		homepage = strings.TrimSuffix(homepage, ".git")
	}

	return Info{License: license, URL: homepage}, nil
}
