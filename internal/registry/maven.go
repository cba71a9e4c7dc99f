package registry

import (
	"context"
	"fmt"
	"strings"
)

type mavenResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			Homepage string `json:"homepage"`
		} `json:"docs"`
	} `json:"response"`
}

// javaInfo resolves a "group:artifact" coordinate via the Maven Central
// search API. Central does not expose license text through search, so the
// license is reported as "See URL" with a link to look it up.
func (c *Client) javaInfo(ctx context.Context, name string) (Info, error) {
	group, artifact, ok := strings.Cut(name, ":")
	if !ok {
		return Info{License: "Unknown"}, nil
	}

	var data mavenResponse
	url := fmt.Sprintf(`%s/solrsearch/select?q=g:%%22%s%%22+AND+a:%%22%s%%22&wt=json`,
		c.MavenBaseURL, group, artifact)
	if err := c.getJSON(ctx, url, &data); err != nil {
		return Info{}, err
	}

	if data.Response.NumFound == 0 || len(data.Response.Docs) == 0 {
		return Info{License: "Unknown"}, nil
	}

	homepage := data.Response.Docs[0].Homepage
	if homepage == "" {
		homepage = fmt.Sprintf("https://mvnrepository.com/artifact/%s/%s", group, artifact)
	}

	return Info{License: "See URL", URL: homepage}, nil
}
