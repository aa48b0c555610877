package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"art-seeder/models"
)

func strPtr(s string) *string { return &s }

func jan1(year int) time.Time { return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC) }

func TestArtwork_SaleScenario(t *testing.T) {
	n := testNormalizer()
	aw := artwork("aw-1", artist("ar-1"))
	aw.IsForSale = true
	aw.Price = &models.Money{Minor: 5000, CurrencyCode: "EUR"}

	pub, err := n.Artwork(aw)
	require.NoError(t, err)
	require.NotNil(t, pub.Artwork)

	assert.Equal(t, models.KindArtworkPublication, pub.Kind)
	assert.Equal(t, jan1(2019), pub.Artwork.CreationDate)
	assert.Equal(t, 1, pub.Artwork.Copies)
	assert.Equal(t, 1, pub.Artwork.AvailableCopies)
	assert.True(t, pub.Artwork.OnSale)
	assert.Equal(t, int64(5000), pub.Artwork.PriceMinor)
	assert.Equal(t, "EUR", pub.Artwork.Currency)
	assert.Equal(t, "pay@seed.test", pub.Artwork.PaymentContact)
}

func TestArtwork_NotForSaleHasNoPrice(t *testing.T) {
	aw := artwork("aw-2", artist("ar-1"))
	aw.EditionOf = strPtr("Edition of 25")
	aw.Price = &models.Money{Minor: 100, CurrencyCode: "USD"}

	pub, err := testNormalizer().Artwork(aw)
	require.NoError(t, err)
	assert.Equal(t, 25, pub.Artwork.Copies)
	assert.False(t, pub.Artwork.OnSale)
	assert.Zero(t, pub.Artwork.PriceMinor)
	assert.Empty(t, pub.Artwork.Currency)
	assert.Zero(t, pub.Artwork.AvailableCopies)
}

func TestArtwork_SoldHasNoAvailableCopies(t *testing.T) {
	aw := artwork("aw-3", artist("ar-1"))
	aw.IsAcquireable = true
	aw.IsSold = true
	aw.Price = &models.Money{Minor: 100, CurrencyCode: "USD"}

	pub, err := testNormalizer().Artwork(aw)
	require.NoError(t, err)
	assert.True(t, pub.Artwork.OnSale)
	assert.Zero(t, pub.Artwork.AvailableCopies)
}

func TestCheckArtwork_Skips(t *testing.T) {
	forSale := artwork("aw-s", artist("a"))
	forSale.IsForSale = true

	noImage := artwork("aw-i", artist("a"))
	noImage.ImageURL = ""

	tests := []struct {
		name string
		aw   models.SourceArtwork
	}{
		{"verkäuflich ohne Preis", forSale},
		{"kein Bild", noImage},
		{"keine Künstler", artwork("aw-k")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckArtwork(tt.aw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSkip))

			var se *SkipError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, models.EntityArtwork, se.Kind)
			assert.Equal(t, tt.aw.ID, se.SourceID)
			assert.Equal(t, tt.name, se.Reason)
		})
	}
}

func TestCopies(t *testing.T) {
	assert.Equal(t, 1, Copies(nil))
	assert.Equal(t, 1, Copies(strPtr("")))
	assert.Equal(t, 25, Copies(strPtr("Edition of 25")))
	assert.Equal(t, 10, Copies(strPtr("10 + 2 AP")))
	assert.Equal(t, 1, Copies(strPtr("open edition")))
	assert.Equal(t, 0, Copies(strPtr("0")))
}

func TestArtworkDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2019", jan1(2019)},
		{"ca. 1970", jan1(1970)},
		{"1990-1995", jan1(1990)},
		{"1990 – 95", jan1(1990)},
		{"1960s", jan1(1960)},
		{"2005-06-15", time.Date(2005, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"06/15/2005", time.Date(2005, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"15/06/2005", time.Date(2005, time.June, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res := ArtworkDate(tt.raw, testNow)
			assert.Nil(t, res.Fallback)
			assert.True(t, tt.want.Equal(res.Time), "got %s", res.Time)
		})
	}
}

func TestDates_FallBackToNow(t *testing.T) {
	for _, raw := range []string{"", "unknown", "n.d."} {
		res := ArtworkDate(raw, testNow)
		require.NotNil(t, res.Fallback, raw)
		assert.Equal(t, testNow, res.Time)
	}
	res := BirthDate("", testNow)
	require.NotNil(t, res.Fallback)
	assert.Equal(t, testNow, res.Time)
}

func TestBirthDate(t *testing.T) {
	assert.Equal(t, jan1(1948), BirthDate("1948", testNow).Time)
	assert.Equal(t, jan1(1948), BirthDate("1948/1950", testNow).Time)
	assert.Equal(t, jan1(1881), BirthDate("born 1881", testNow).Time)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full, first, surname string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Pablo Ruiz  Picasso", "Pablo", "Ruiz Picasso"},
		{"Banksy", "Banksy", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, surname := SplitName(tt.full)
		assert.Equal(t, tt.first, first, tt.full)
		assert.Equal(t, tt.surname, surname, tt.full)
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "Oil on canvas.\n\nSigned verso", Description(" Oil on canvas. ", strPtr("signed verso  ")))
	assert.Equal(t, "Über alles", Description("", strPtr("über alles")))
	assert.Equal(t, "Plain", Description("Plain", nil))
	assert.Equal(t, "Plain", Description("Plain", strPtr("   ")))
}

func TestVenue(t *testing.T) {
	got := Venue(models.Partner{Name: "Gallery X"}, models.Location{Address: "Main St 1", City: "Berlin"})
	assert.Equal(t, "Gallery X, Main St 1, Berlin", got)
}

func TestArtist(t *testing.T) {
	a := models.SourceArtist{ID: "4D8B92B34", Name: "Jane  Doe", Birthday: "1970", Biography: " Painter. "}

	user, err := testNormalizer().Artist(a)
	require.NoError(t, err)
	assert.Equal(t, "4d8b92b34", user.Username)
	assert.Equal(t, "4d8b92b34@seed.test", user.Email)
	assert.Equal(t, models.RoleArtist, user.Role)
	require.NotNil(t, user.Creator)
	assert.Equal(t, "Jane", user.Creator.Name)
	assert.Equal(t, "Doe", user.Creator.Surname)
	assert.Equal(t, jan1(1970), user.Creator.BirthDate)
	assert.Equal(t, "Painter.", user.Creator.Bio)

	_, err = testNormalizer().Artist(models.SourceArtist{Name: "No ID"})
	assert.ErrorIs(t, err, ErrSkip)
}

func TestCheckEvent(t *testing.T) {
	n := testNormalizer()
	assert.NoError(t, n.CheckEvent(event("ev-ok", artwork("aw", artist("a")))))

	noCoords := event("ev-c", artwork("aw", artist("a")))
	noCoords.Location.Coordinates = nil

	noHref := event("ev-h", artwork("aw", artist("a")))
	noHref.BookingHref = ""

	tooOld := event("ev-o", artwork("aw", artist("a")))
	tooOld.StartAt = testNow.Add(-400 * 24 * time.Hour)

	tooLate := event("ev-l", artwork("aw", artist("a")))
	tooLate.EndAt = testNow.Add(400 * 24 * time.Hour)

	for _, ev := range []models.SourceEvent{noCoords, noHref, tooOld, tooLate, event("ev-empty")} {
		err := n.CheckEvent(ev)
		var se *SkipError
		require.ErrorAs(t, err, &se, ev.ID)
		assert.Equal(t, ev.ID, se.SourceID)
		assert.Equal(t, models.EntityEvent, se.Kind)
	}
}

func TestEvent_Attributes(t *testing.T) {
	pub, err := testNormalizer().Event(event("ev-1", artwork("aw", artist("a"))))
	require.NoError(t, err)
	require.NotNil(t, pub.Event)
	assert.Equal(t, "Gallery, Berlin", pub.Event.Venue)
	assert.InDelta(t, 52.5, pub.Event.Lat, 1e-9)
	assert.Equal(t, "https://www.artsy.net/show/ev-1", pub.Event.BookingLink)
}
