package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/relay"
	"github.com/azenia/website/internal/storage"
)

// JobStore is the jobs table.
type JobStore interface {
	ListJobs(ctx context.Context) ([]db.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	CreateJob(ctx context.Context, fields db.JobFields) (*db.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, fields db.JobFields) (*db.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

// LogoStore is the client_logos table.
type LogoStore interface {
	ListActiveLogos(ctx context.Context) ([]db.ClientLogo, error)
	ListLogos(ctx context.Context) ([]db.ClientLogo, error)
	CreateLogo(ctx context.Context, in db.LogoInput) (*db.ClientLogo, error)
	UpdateLogo(ctx context.Context, id uuid.UUID, fields db.LogoFields) (*db.ClientLogo, error)
	DeleteLogo(ctx context.Context, id uuid.UUID) error
}

// ApplicationStore is the job_applications table.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, in db.ApplicationInput) (*db.JobApplication, error)
}

// Store is everything the server reads and writes. *db.DB implements it.
type Store interface {
	JobStore
	LogoStore
	ApplicationStore
	relay.SubmissionStore
	AdminStore
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Uploader stores files in a bucket. *storage.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, bucket, name string, body []byte) (*storage.Object, error)
}

var (
	_ Store    = (*db.DB)(nil)
	_ Pinger   = (*db.DB)(nil)
	_ Uploader = (*storage.Client)(nil)
)
