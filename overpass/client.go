package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/util"
)

const (
	DEFAULT_URL = "https://overpass-api.de/api/interpreter"
)

type Client struct {
	logger     *logrus.Logger
	apiUrl     string
	maxTries   int
	retryDelay time.Duration
	httpClient *http.Client
}

func (cli *Client) doSingleQuery(ctx context.Context, v url.Values) (*osm.OSM, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cli.apiUrl, strings.NewReader(v.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cli.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = matchBodyAgainstErrors(respBytes)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("received status code %d: body: %s", resp.StatusCode, string(respBytes))
	}

	var osmData osm.OSM

	err = json.Unmarshal(respBytes, &osmData)
	if err != nil {
		if nerr := matchBodyAgainstErrors(respBytes); nerr != nil {
			return nil, nerr
		}
		return nil, err
	}

	return &osmData, nil
}

// AdminBoundaryQuery builds the overpass QL for administrative boundary
// relations of one admin_level within a bound.
func AdminBoundaryQuery(bound orb.Bound, adminLevel int) string {
	return fmt.Sprintf(`[out:json]
[timeout:900]
[bbox:%f,%f,%f,%f];
(
    rel[boundary=administrative][admin_level=%d];
);
out body;
>;
out skel qt;
`, bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon(), adminLevel)
}

// GetAdminBoundaries queries overpass, retrying on overpass timeouts and
// duplicate-query rejections.
func (cli *Client) GetAdminBoundaries(ctx context.Context, bound orb.Bound, adminLevel int) (*osm.OSM, error) {
	urlValues := url.Values{
		"data": {AdminBoundaryQuery(bound, adminLevel)},
	}

	triesLeft := cli.maxTries

	for {
		osmData, err := cli.doSingleQuery(ctx, urlValues)
		if err == nil {
			return osmData, nil
		}
		if !errors.Is(err, errTimeout) && !errors.Is(err, errDupeQuery) {
			return nil, err
		}
		triesLeft--
		if triesLeft <= 0 {
			return nil, err
		}
		cli.logger.Warnf("overpass: %v. sleeping %s before retrying.", err, cli.retryDelay)
		if err := util.SleepContext(ctx, cli.retryDelay); err != nil {
			return nil, err
		}
	}
}

func NewClient(logger *logrus.Logger, apiUrl string, maxTries int) (*Client, error) {
	if logger == nil {
		return nil, errors.New("No logger given")
	}
	if apiUrl == "" {
		return nil, errors.New("No apiUrl given")
	}
	if maxTries < 1 {
		maxTries = 1
	}
	return &Client{
		logger:     logger,
		apiUrl:     apiUrl,
		maxTries:   maxTries,
		retryDelay: time.Second,
		httpClient: &http.Client{},
	}, nil
}
