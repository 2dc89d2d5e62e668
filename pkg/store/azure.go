package store

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/config"
)

type (
	// AzureAPI is the subset of the azblob client used by the Azure store.
	AzureAPI interface {
		NewListBlobsFlatPager(containerName string, o *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
		DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
	}

	// Azure is a Store reading from Azure Blob Storage. Locations and paths
	// take the form azblob://container/key.
	Azure struct {
		client AzureAPI
	}
)

// NewAzure creates an Azure store from cfg, authenticating with the shared key
// when one is configured.
func NewAzure(cfg config.Azure) (*Azure, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Account == "" {
			return nil, errors.New("azure: account or endpoint is required")
		}
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.Account)
	}

	if cfg.Key == "" {
		client, err := azblob.NewClientWithNoCredential(endpoint, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create azure client")
		}
		return NewAzureFromClient(client), nil
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.Account, cfg.Key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid azure shared key")
	}

	client, err := azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create azure client")
	}

	return NewAzureFromClient(client), nil
}

// NewAzureFromClient wraps an existing client.
func NewAzureFromClient(client AzureAPI) *Azure {
	return &Azure{client: client}
}

// List returns the blobs directly under location.
func (s *Azure) List(ctx context.Context, location string) ([]string, error) {
	container, key, err := azureLocation(location)
	if err != nil {
		return nil, err
	}

	prefix := dirPrefix(key)
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var names []string
	pager := s.client.NewListBlobsFlatPager(container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isAzureNotFound(err) {
				return nil, errors.Wrapf(ErrNotFound, "container: %s", container)
			}
			return nil, errors.Wrapf(err, "failed to list: %s", location)
		}

		if page.Segment == nil {
			continue
		}

		for _, item := range page.Segment.BlobItems {
			if item != nil && item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}

	names = childKeys(prefix, names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = SchemeAzure + "://" + container + "/" + n
	}

	return paths, nil
}

// Open downloads the blob at path.
func (s *Azure) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	container, key, err := azureLocation(path)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "blob: %s", path)
		}
		return nil, errors.Wrapf(err, "failed to download: %s", path)
	}

	return resp.Body, nil
}

func azureLocation(path string) (container, key string, err error) {
	scheme, container, key := SplitURL(path)
	if scheme != SchemeAzure {
		return "", "", errors.Errorf("not an azblob location: %s", path)
	}

	if container == "" {
		return "", "", errors.Errorf("missing container in location: %s", path)
	}

	return container, key, nil
}

func isAzureNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return true
	}

	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
