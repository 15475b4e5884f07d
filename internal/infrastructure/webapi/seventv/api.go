package seventv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"

	"seventvbot/internal/domain"
	"seventvbot/internal/metrics"
)

const (
	maxResponseSize = 10 << 20
	maxErrorBody    = 512
	defaultTimeout  = time.Second * 10
)

func New(url string, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout

	return &API{
		url:    url,
		client: client,
	}
}

type API struct {
	url    string
	client *http.Client
}

type (
	request struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}
	response struct {
		Data   map[string]json.RawMessage `json:"data"`
		Errors []GraphErrorDetail         `json:"errors"`
	}

	emoteItem struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Animated bool   `json:"animated"`
		Host     struct {
			Files []struct {
				Format string `json:"format"`
			} `json:"files"`
		} `json:"host"`
	}
	itemList struct {
		Items []emoteItem `json:"items"`
	}
	connectedUser struct {
		EmoteSets []struct {
			Emotes []struct {
				Data *emoteItem `json:"data"`
			} `json:"emotes"`
		} `json:"emote_sets"`
	}
)

func (e emoteItem) toDomain() domain.Emote {
	return domain.Emote{
		ID:       e.ID,
		Name:     e.Name,
		Animated: e.Animated,
	}
}

func toDomain(items []emoteItem) []domain.Emote {
	res := make([]domain.Emote, 0, len(items))
	for _, it := range items {
		res = append(res, it.toDomain())
	}

	return res
}

// EmoteURL is the CDN link of the 2x rendition: gif for animated emotes, png otherwise.
func EmoteURL(cdnHost string, e domain.Emote) string {
	ext := "png"
	if e.Animated {
		ext = "gif"
	}

	return fmt.Sprintf("https://%s/emote/%s/2x.%s", cdnHost, e.ID, ext)
}

// Execute posts one document and returns the aliased sub-query results.
// It never retries.
func (a *API) Execute(ctx context.Context, doc Document) (map[string]json.RawMessage, error) {
	const errMsg = "SevenTvAPI.Execute"

	outcome := "ok"
	start := time.Now()
	defer func() {
		metrics.ProviderRequests.WithLabelValues(outcome).Inc()
		metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(request{Query: doc.Query, Variables: doc.Variables})
	if err != nil {
		outcome = "encode"
		return nil, errors.Wrap(err, errMsg)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		outcome = "encode"
		return nil, errors.Wrap(err, errMsg)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		outcome = "transport"
		return nil, errors.Wrap(&TransportError{Err: err}, errMsg)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		outcome = "transport"
		return nil, errors.Wrap(&TransportError{Err: err}, errMsg)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		outcome = "http"
		if len(payload) > maxErrorBody {
			payload = payload[:maxErrorBody]
		}

		return nil, errors.Wrap(&HTTPError{Status: resp.StatusCode, Body: string(payload)}, errMsg)
	}

	var res response
	err = json.Unmarshal(payload, &res)
	if err != nil {
		outcome = "decode"
		return nil, errors.Wrap(err, errMsg)
	}

	if len(res.Errors) > 0 {
		outcome = "graph"
		return nil, errors.Wrap(&GraphError{Details: res.Errors}, errMsg)
	}

	return res.Data, nil
}

// CategoryPages returns the emotes of consecutive category pages in page order.
func (a *API) CategoryPages(ctx context.Context, category string, pages, pageOffset, limit int) ([]domain.Emote, error) {
	const errMsg = "SevenTvAPI.CategoryPages"

	doc := CategoryQuery(pages, category, pageOffset, limit)

	data, err := a.Execute(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	var res []domain.Emote

	for _, sub := range doc.Subs {
		var page itemList

		err = decodeSub(data, sub.Alias, &page)
		if err != nil {
			return nil, errors.Wrap(err, errMsg)
		}

		res = append(res, toDomain(page.Items)...)
	}

	return res, nil
}

// EmotesByName returns the provider's candidates for every requested name.
// Candidates are not guaranteed to match the name exactly.
func (a *API) EmotesByName(ctx context.Context, names []string) (map[string][]domain.Emote, error) {
	const errMsg = "SevenTvAPI.EmotesByName"

	doc, err := NameQuery(names)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	data, err := a.Execute(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make(map[string][]domain.Emote, len(doc.Subs))

	for _, sub := range doc.Subs {
		var list itemList

		err = decodeSub(data, sub.Alias, &list)
		if err != nil {
			return nil, errors.Wrap(err, errMsg)
		}

		res[sub.Key] = toDomain(list.Items)
	}

	return res, nil
}

// EmotesByID returns the emotes found for ids; unknown ids are absent from the result.
func (a *API) EmotesByID(ctx context.Context, ids []string) (map[string]domain.Emote, error) {
	const errMsg = "SevenTvAPI.EmotesByID"

	doc, err := IDQuery(ids)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	data, err := a.Execute(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make(map[string]domain.Emote, len(doc.Subs))

	for _, sub := range doc.Subs {
		var item *emoteItem

		err = decodeSub(data, sub.Alias, &item)
		if err != nil {
			return nil, errors.Wrap(err, errMsg)
		}

		if item != nil {
			res[sub.Key] = item.toDomain()
		}
	}

	return res, nil
}

// EmotesByChannel returns the emote set members of every channel the provider
// knows; unknown channels are absent from the result.
func (a *API) EmotesByChannel(ctx context.Context, channelIDs []string) (map[string][]domain.Emote, error) {
	const errMsg = "SevenTvAPI.EmotesByChannel"

	doc, err := ChannelQuery(channelIDs)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	data, err := a.Execute(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make(map[string][]domain.Emote, len(doc.Subs))

	for _, sub := range doc.Subs {
		var user *connectedUser

		err = decodeSub(data, sub.Alias, &user)
		if err != nil {
			return nil, errors.Wrap(err, errMsg)
		}

		if user == nil {
			continue
		}

		var emotes []domain.Emote
		for _, set := range user.EmoteSets {
			for _, e := range set.Emotes {
				if e.Data != nil {
					emotes = append(emotes, e.Data.toDomain())
				}
			}
		}
		res[sub.Key] = emotes
	}

	return res, nil
}

func decodeSub(data map[string]json.RawMessage, alias string, dst any) error {
	raw, ok := data[alias]
	if !ok {
		return errors.Errorf("response has no %q", alias)
	}

	return errors.Wrap(json.Unmarshal(raw, dst), alias)
}
