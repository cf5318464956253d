package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/promobot/internal/log"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type S3API interface {
	s3.ListObjectsV2APIClient
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Generator builds an RSS feed of every image stored in the bucket.
type Generator struct {
	client  S3API
	bucket  string
	prefix  string
	siteURL string
	now     func() time.Time
}

func NewS3Generator(i *do.Injector) (*Generator, error) {
	return &Generator{
		client:  do.MustInvoke[*s3.Client](i),
		bucket:  do.MustInvokeNamed[string](i, "bucket"),
		prefix:  do.MustInvokeNamed[string](i, "prefix"),
		siteURL: do.MustInvokeNamed[string](i, "site_url"),
		now:     time.Now,
	}, nil
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed", "bucket", g.bucket, "prefix", g.prefix)

	feed := feeds.Feed{
		Title:       "promobot",
		Description: "Generated marketing images",
		Link:        &feeds.Link{Href: g.siteURL},
		Updated:     g.now(),
	}

	pager := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(g.prefix),
	})

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			_ = group.Wait()
			return nil, err
		}

		objs := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			return strings.HasSuffix(aws.ToString(o.Key), ".jpg")
		})

		for _, obj := range objs {
			key := aws.ToString(obj.Key)
			group.Go(func() error {
				out, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
					Bucket: aws.String(g.bucket),
					Key:    aws.String(key),
				})
				if err != nil {
					return err
				}

				meta := out.Metadata
				item := &feeds.Item{
					Title:       fmt.Sprintf("%s: %s", meta["product"], meta["concept"]),
					Description: fmt.Sprintf("%s (seed %s, %s)", meta["prompt"], meta["seed"], meta["style"]),
					Link:        &feeds.Link{Href: strings.TrimRight(g.siteURL, "/") + "/" + key},
					Id:          key,
					Updated:     aws.ToTime(out.LastModified),
				}
				mu.Lock()
				feed.Add(item)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.After(b.Updated) || a.Updated.Equal(b.Updated) && a.Id < b.Id
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}
