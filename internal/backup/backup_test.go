package backup

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage/memory"
)

type fakeS3 struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateContact(ctx, models.NewContact("Jane", "1")))

	fake := &fakeS3{}
	u := NewUploader(fake, "backups", "contactbook")
	u.now = func() time.Time { return time.Date(2026, 3, 1, 8, 30, 0, 0, time.FixedZone("IST", 19800)) }

	key, err := u.Upload(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "contactbook/contacts-20260301T030000Z.db", key)
	assert.Equal(t, "backups", fake.bucket)
	assert.Equal(t, key, fake.key)

	restored := memory.New()
	require.NoError(t, restored.ImportSnapshot(ctx, fake.body))
	jane, err := restored.FindContactByPhone(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, jane)
	assert.Equal(t, "Jane", jane.Name)
}

func TestUploadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewUploader(&fakeS3{}, "", "").Upload(ctx, memory.New())
	assert.ErrorContains(t, err, "bucket")

	_, err = NewUploader(&fakeS3{err: errors.New("access denied")}, "b", "").Upload(ctx, memory.New())
	assert.ErrorContains(t, err, "access denied")
}

func TestKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "contacts-20260102T030405Z.db", NewUploader(nil, "b", "").Key(at))
	assert.Equal(t, "x/contacts-20260102T030405Z.db", NewUploader(nil, "b", "x/").Key(at))
}
