package registry

import (
	"context"
	"fmt"
	"strings"
)

type pypiResponse struct {
	Info struct {
		License     string            `json:"license"`
		Classifiers []string          `json:"classifiers"`
		ProjectURLs map[string]string `json:"project_urls"`
		HomePage    string            `json:"home_page"`
	} `json:"info"`
}

// pythonInfo fetches license and homepage for a Python package from PyPI.
// When the license field is empty the first "License ::" trove classifier
// is used instead. project_urls can be null in the PyPI response.
func (c *Client) pythonInfo(ctx context.Context, name string) (Info, error) {
	var data pypiResponse
	url := fmt.Sprintf("%s/pypi/%s/json", c.PyPIBaseURL, name)
	if err := c.getJSON(ctx, url, &data); err != nil {
		return Info{}, err
	}

	license := data.Info.License
	if license == "" || license == "Unknown" {
		for _, classifier := range data.Info.Classifiers {
			if strings.HasPrefix(classifier, "License ::") {
				parts := strings.Split(classifier, "::")
				license = strings.TrimSpace(parts[len(parts)-1])
				break
			}
		}
	}
	if license == "" {
		license = "Unknown"
	}

	homepage := data.Info.ProjectURLs["Homepage"]
	if homepage == "" {
		homepage = data.Info.HomePage
	}

	return Info{License: license, URL: homepage}, nil
}
