package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const receiptBucket = "payment-receipts"

// ReceiptArchive stores an immutable snapshot of a reconciled payment
// outside the relational store.
type ReceiptArchive interface {
	StoreReceipt(ctx context.Context, orderID, paymentID string) error
}

type receiptRecord struct {
	OrderID    string    `json:"order_id"`
	PaymentID  string    `json:"payment_id"`
	ArchivedAt time.Time `json:"archived_at"`
}

type minioReceiptArchive struct {
	client *minio.Client
}

func NewMinioReceiptArchive(endpoint, accessKey, secretKey string, useSSL bool) (ReceiptArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioReceiptArchive{client: client}, nil
}

func (m *minioReceiptArchive) StoreReceipt(ctx context.Context, orderID, paymentID string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}

	record := receiptRecord{
		OrderID:    orderID,
		PaymentID:  paymentID,
		ArchivedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	objectName := orderID + "/" + paymentID + ".json"
	_, err = m.client.PutObject(ctx, receiptBucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (m *minioReceiptArchive) ensureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, receiptBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, receiptBucket, minio.MakeBucketOptions{})
	}
	return nil
}
