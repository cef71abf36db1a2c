package koji_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_TIMEOUT = 30 * time.Second

	FEATURE_COLLECTION_PATH = "/api/v1/geofence/feature-collection/"
)

type APIClient struct {
	logger      *logrus.Logger
	url         string
	bearerToken string

	httpClient *http.Client
}

func (cli *APIClient) makePublicRequest(ctx context.Context, method, urlStr string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, cli.url+urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("error forming http request: %w", err)
	}

	reqHdr := req.Header
	reqHdr.Set("Accept", "application/json")
	if cli.bearerToken != "" {
		reqHdr.Set("Authorization", "Bearer "+cli.bearerToken)
	}

	resp, err := cli.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing http request: %w", err)
	}

	return resp, nil
}

// GetFeatureCollection fetches every geofence in a koji project.
func (cli *APIClient) GetFeatureCollection(ctx context.Context, project string) (*geojson.FeatureCollection, error) {
	cli.logger.Debugf("koji: fetching feature collection for project '%s'", project)

	resp, err := cli.makePublicRequest(ctx, http.MethodGet, "/geofence/feature-collection/"+url.PathEscape(project))
	if err != nil {
		return nil, err
	}

	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	var fc geojson.FeatureCollection

	if err := decodeResponse(resp, &fc); err != nil {
		return nil, err
	}

	return &fc, nil
}

// SplitFeatureCollectionUrl splits a full koji feature collection url
// into its base url and project name.
func SplitFeatureCollectionUrl(urlStr string) (baseUrl, project string, err error) {
	uri, err := url.Parse(urlStr)
	if err != nil {
		return "", "", fmt.Errorf("koji url looks malformed: %w", err)
	}

	if !strings.HasPrefix(uri.Path, FEATURE_COLLECTION_PATH) {
		return "", "", fmt.Errorf("koji url looks malformed: '%s' does not start with '%s'", uri.Path, FEATURE_COLLECTION_PATH)
	}

	project = uri.Path[len(FEATURE_COLLECTION_PATH):]
	if project == "" {
		return "", "", fmt.Errorf("koji url looks malformed: the project is missing")
	}

	uri.Path = ""
	uri.RawPath = ""
	return uri.String(), project, nil
}

func NewAPIClient(logger *logrus.Logger, urlStr, bearerToken string) (*APIClient, error) {
	uri, err := url.Parse(urlStr)
	if err != nil || uri.Host == "" {
		return nil, fmt.Errorf("Invalid Koji URL: %s", urlStr)
	}
	cli := &APIClient{
		logger:      logger,
		url:         strings.TrimSuffix(urlStr, "/") + "/api/v1",
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: DEFAULT_TIMEOUT},
	}
	return cli, nil
}
