package client

import (
	"context"
	"fmt"
	"path"

	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

type userDocument struct {
	ChildList []struct {
		CID string `json:"cid"`
	} `json:"childList"`
}

type childDocument struct {
	Name          string                 `json:"childsName"`
	Birthday      string                 `json:"birthdate"`
	Picture       string                 `json:"picture"`
	Gender        string                 `json:"gender"`
	Color         string                 `json:"color"`
	CreatedAt     *float64               `json:"createdAt"`
	NightStart    string                 `json:"nightStart"`
	MorningCutoff string                 `json:"morningCutoff"`
	ExpectedNaps  *int                   `json:"expectedNaps"`
	Categories    map[string]interface{} `json:"categories"`
}

type healthDocument struct {
	Prefs struct {
		LastGrowth *GrowthEntry `json:"lastGrowth"`
	} `json:"prefs"`
}

// GetChildren - fetches children of the signed in user and caches them in the session
func (c *HuckleberryClient) GetChildren(ctx context.Context) ([]child.Child, error) {
	log.Info().Msg("Fetching children list")

	if err := c.MaybeAuthorize(ctx, false); err != nil {
		return nil, err
	}

	userDoc, err := c.GetDocument(ctx, path.Join(UsersCollection, c.UserID()))
	if err != nil {
		return nil, err
	}

	user := new(userDocument)
	if err := userDoc.DecodeInto(user); err != nil {
		return nil, fmt.Errorf("unable to decode user document: %w", err)
	}

	children := make([]child.Child, 0, len(user.ChildList))
	for _, entry := range user.ChildList {
		if entry.CID == "" {
			continue
		}

		childDoc, err := c.GetDocument(ctx, path.Join(ChildsCollection, entry.CID))
		if err != nil {
			return nil, err
		}

		profile := new(childDocument)
		if err := childDoc.DecodeInto(profile); err != nil {
			return nil, fmt.Errorf("unable to decode child %v: %w", entry.CID, err)
		}

		children = append(children, child.Child{
			UID:           entry.CID,
			Name:          profile.Name,
			Birthday:      profile.Birthday,
			Picture:       profile.Picture,
			Gender:        profile.Gender,
			Color:         profile.Color,
			CreatedAt:     profile.CreatedAt,
			NightStart:    profile.NightStart,
			MorningCutoff: profile.MorningCutoff,
			ExpectedNaps:  profile.ExpectedNaps,
			Categories:    profile.Categories,
		})
	}

	if len(children) == 0 {
		return nil, ErrNoChildren
	}

	c.SessionStore.Session.Children = children
	if err := c.SessionStore.Save(); err != nil {
		return nil, err
	}

	return children, nil
}

// EnsureChildren - fetches children list if not fetched already
func (c *HuckleberryClient) EnsureChildren(ctx context.Context) ([]child.Child, error) {
	if len(c.SessionStore.Session.Children) == 0 {
		return c.GetChildren(ctx)
	}

	return c.SessionStore.Session.Children, nil
}

// getRecord - reads the record document of a child, missing document decodes to the zero value
func (c *HuckleberryClient) getRecord(ctx context.Context, collection string, childUID string, target interface{}) error {
	doc, err := c.GetDocument(ctx, path.Join(collection, childUID))
	if IsNotFound(err) {
		return nil
	} else if err != nil {
		return err
	}

	if err := doc.DecodeInto(target); err != nil {
		return fmt.Errorf("unable to decode %v record of %v: %w", collection, childUID, err)
	}

	return nil
}

// FetchChildData - fetches all tracked records of a child
func (c *HuckleberryClient) FetchChildData(ctx context.Context, childUID string) (child.Data, error) {
	data := child.Data{
		SleepStatus: &child.SleepStatus{},
		FeedStatus:  &child.FeedStatus{},
		DiaperData:  &child.DiaperStatus{},
	}

	if err := c.getRecord(ctx, SleepCollection, childUID, data.SleepStatus); err != nil {
		return child.Data{}, err
	}

	if err := c.getRecord(ctx, FeedCollection, childUID, data.FeedStatus); err != nil {
		return child.Data{}, err
	}

	if err := c.getRecord(ctx, DiaperCollection, childUID, data.DiaperData); err != nil {
		return child.Data{}, err
	}

	health := new(healthDocument)
	if err := c.getRecord(ctx, HealthCollection, childUID, health); err != nil {
		return child.Data{}, err
	}

	if health.Prefs.LastGrowth != nil {
		data.GrowthData = health.Prefs.LastGrowth.Measurement()
	}

	return data, nil
}

// FetchSnapshot - fetches data of all the children
func (c *HuckleberryClient) FetchSnapshot(ctx context.Context, children []child.Child) (child.Snapshot, error) {
	snapshot := make(child.Snapshot, len(children))

	for _, ch := range children {
		data, err := c.FetchChildData(ctx, ch.UID)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch data of child %v: %w", ch.UID, err)
		}

		snapshot[ch.UID] = data
	}

	return snapshot, nil
}
