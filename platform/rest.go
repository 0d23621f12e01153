package platform

import (
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/skypipe/skypipe-cli/helper"
)

// Client builds a resty client for the currently configured platform remote.
func Client(verbose bool) (*resty.Client, error) {
	baseURL := helper.CurrentConfig("url")
	token := helper.CurrentConfig("token")

	if baseURL == "" {
		return nil, errors.New("platform URL is not configured, maybe try `skypipe setup`")
	}

	client := resty.New()
	client.SetHostURL(baseURL)
	if token != "" {
		client.SetHeader("Authorization", "Bearer "+token)
	}
	client.SetDebug(verbose)

	return client, nil
}
