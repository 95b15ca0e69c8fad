package service

import (
	"context"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
)

const defaultIDChunkSize = 100

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	if size <= 0 {
		size = defaultIDChunkSize
	}
	var chunks [][]uuid.UUID
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// loadProducts fetches products by ID in chunks, skipping IDs already in into.
func loadProducts(ctx context.Context, repo repository.ProductRepository, ids []uuid.UUID, chunkSize int, into map[uuid.UUID]model.Product) error {
	var missing []uuid.UUID
	for _, id := range uniqueIDs(ids) {
		if _, ok := into[id]; !ok {
			missing = append(missing, id)
		}
	}
	for _, chunk := range chunkIDs(missing, chunkSize) {
		products, err := repo.FindByIDs(ctx, chunk)
		if err != nil {
			return err
		}
		for _, p := range products {
			into[p.ID] = p
		}
	}
	return nil
}

func loadItems(ctx context.Context, repo repository.TransactionItemRepository, txIDs []uuid.UUID, chunkSize int) (map[uuid.UUID][]model.TransactionItem, error) {
	byTx := make(map[uuid.UUID][]model.TransactionItem, len(txIDs))
	for _, chunk := range chunkIDs(uniqueIDs(txIDs), chunkSize) {
		items, err := repo.FindByTransactionIDs(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			byTx[it.TransactionID] = append(byTx[it.TransactionID], it)
		}
	}
	return byTx, nil
}
