package hyp3

import (
	"context"

	"github.com/example/go-hyp3/hyp3/model"
)

// ProductIterator provides streaming access to paginated product listings.
type ProductIterator struct {
	client    *Client
	subID     int
	pageSize  int
	page      int
	index     int
	batch     []model.Product
	lastErr   error
	exhausted bool
}

func newProductIterator(client *Client, subID, pageSize int) *ProductIterator {
	if pageSize <= 0 {
		pageSize = productPageSize
	}
	return &ProductIterator{
		client:   client,
		subID:    subID,
		pageSize: pageSize,
	}
}

// Next fetches the next product. It returns false when iteration is complete
// or an error occurred.
func (it *ProductIterator) Next(ctx context.Context) bool {
	if it.exhausted {
		return false
	}

	if it.index < len(it.batch) {
		it.index++
		return true
	}

	if it.lastErr != nil {
		return false
	}

	if err := it.loadNext(ctx); err != nil {
		it.lastErr = err
		return false
	}

	if len(it.batch) == 0 {
		it.exhausted = true
		return false
	}

	it.index = 1
	return true
}

// Product returns the current product. Call after Next returns true.
func (it *ProductIterator) Product() model.Product {
	if it.index == 0 || it.index > len(it.batch) {
		return model.Product{}
	}
	return it.batch[it.index-1]
}

// Err reports any error encountered during iteration.
func (it *ProductIterator) Err() error {
	return it.lastErr
}

func (it *ProductIterator) loadNext(ctx context.Context) error {
	batch, err := it.client.ProductPage(ctx, it.subID, it.page, it.pageSize)
	if err != nil {
		return err
	}
	it.batch = batch
	it.index = 0
	it.page++
	if len(batch) == 0 {
		it.exhausted = true
	}
	return nil
}
