package filter

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"testing"

	"fithub/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, v := range []float64{0, 1, -3.5, 12.75, 1e6, 0.01} {
			got, ok := NormalizeNumber(strconv.FormatFloat(v, 'f', -1, 64))
			require.True(t, ok, "value %v", v)
			assert.InDelta(t, v, got, 1e-9)
		}
	})

	t.Run("AbsentIsNotZero", func(t *testing.T) {
		for _, v := range []any{nil, "", "   ", "abc", "NaN", "Inf", math.NaN(), math.Inf(1), (*float64)(nil), struct{}{}} {
			_, ok := NormalizeNumber(v)
			assert.False(t, ok, "value %#v", v)
		}
	})

	t.Run("TrimsAndAcceptsNumbers", func(t *testing.T) {
		got, ok := NormalizeNumber("  42.5 ")
		require.True(t, ok)
		assert.Equal(t, 42.5, got)

		got, ok = NormalizeNumber(7)
		require.True(t, ok)
		assert.Equal(t, 7.0, got)

		got, ok = NormalizeNumber(json.Number("3"))
		require.True(t, ok)
		assert.Equal(t, 3.0, got)
	})
}

func TestBuildQueryParams(t *testing.T) {
	t.Run("EmptyCriteria", func(t *testing.T) {
		assert.Empty(t, BuildQueryParams(Criteria{}))
	})

	t.Run("OnlyPresentBounds", func(t *testing.T) {
		c := Criteria{Name: "  soup "}
		c.SetRange(Cost, "", "12.5")
		c.SetRange(Calories, "0", "")
		c.SetRange(Protein, "abc", " ")
		c.SetRange(PrepTime, "10.9", "30.2")
		c.SetRange(TotalTime, "", "45.7")

		params := BuildQueryParams(c)

		assert.Equal(t, url.Values{
			"name":           {"soup"},
			"max_cost":       {"12.5"},
			"min_calories":   {"0"},
			"min_prep_time":  {"10"},
			"max_prep_time":  {"30"},
			"max_total_time": {"45"},
		}, params)
	})

	t.Run("RatingsStayLocal", func(t *testing.T) {
		c := Criteria{}
		c.SetRange(DifficultyRating, "2", "4")
		c.SetRange(TasteRating, "3", "")
		c.SetRange(HealthRating, "", "5")

		assert.Empty(t, BuildQueryParams(c))
	})

	t.Run("ListsFlagsAndPaging", func(t *testing.T) {
		c := Criteria{
			MealTypes:        []recipe.MealType{recipe.Lunch, recipe.Dinner},
			ExcludeAllergens: []string{"gluten", "nuts"},
			DietInfo:         []string{"vegan"},
			HasImage:         true,
			Page:             "2.8",
			PageSize:         "50",
		}

		params := BuildQueryParams(c)

		assert.Equal(t, "lunch,dinner", params.Get("meal_type"))
		assert.Equal(t, "gluten,nuts", params.Get("exclude_allergens"))
		assert.Equal(t, "vegan", params.Get("diet_info"))
		assert.Equal(t, "true", params.Get("has_image"))
		assert.Equal(t, "2", params.Get("page"))
		assert.Equal(t, "50", params.Get("page_size"))
	})

	t.Run("HugeIntegersClampToInt64", func(t *testing.T) {
		c := Criteria{Page: "1e30"}
		c.SetRange(PrepTime, "-1e300", "1e300")

		params := BuildQueryParams(c)

		assert.Equal(t, "9223372036854775807", params.Get("page"))
		assert.Equal(t, "9223372036854775807", params.Get("max_prep_time"))
		assert.Equal(t, "-9223372036854775808", params.Get("min_prep_time"))
	})

	t.Run("HasImageFalseIsOmitted", func(t *testing.T) {
		params := BuildQueryParams(Criteria{HasImage: false, ExcludeAllergens: []string{}})
		_, present := params["has_image"]
		assert.False(t, present)
		_, present = params["exclude_allergens"]
		assert.False(t, present)
	})
}

func TestFromQuery(t *testing.T) {
	q := url.Values{
		"name":                  {"pilav"},
		"meal_type":             {"lunch, dinner", "brunch"},
		"min_cost":              {"5"},
		"max_difficulty_rating": {"3"},
		"exclude_allergens":     {"gluten,, dairy"},
		"has_image":             {"1"},
		"page_size":             {"20"},
		"unknown":               {"x"},
	}

	c := FromQuery(q)

	assert.Equal(t, "pilav", c.Name)
	assert.Equal(t, []recipe.MealType{recipe.Lunch, recipe.Dinner}, c.MealTypes)
	assert.Equal(t, Range{Min: "5"}, c.Ranges[Cost])
	assert.Equal(t, Range{Max: "3"}, c.Ranges[DifficultyRating])
	assert.Equal(t, []string{"gluten", "dairy"}, c.ExcludeAllergens)
	assert.True(t, c.HasImage)
	assert.Equal(t, Bound("20"), c.PageSize)
	assert.Len(t, c.Ranges, 2)
}

func TestCriteriaJSON(t *testing.T) {
	body := `{"name":"kofte","ranges":{"cost":{"min":3,"max":"9.5"},"taste_rating":{"min":null}},"has_image":true}`

	var c Criteria
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	lo, ok := c.Ranges[Cost].Min.Value()
	require.True(t, ok)
	assert.Equal(t, 3.0, lo)
	hi, ok := c.Ranges[Cost].Max.Value()
	require.True(t, ok)
	assert.Equal(t, 9.5, hi)
	_, ok = c.Ranges[TasteRating].Min.Value()
	assert.False(t, ok)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	var again Criteria
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, BuildQueryParams(c), BuildQueryParams(again))
}

func TestInvertedRanges(t *testing.T) {
	c := Criteria{}
	c.SetRange(Cost, "10", "5")
	c.SetRange(Calories, "100", "200")
	c.SetRange(HealthRating, "4", "2")
	c.SetRange(Fat, "", "1")

	assert.ElementsMatch(t, []Field{Cost, HealthRating}, c.InvertedRanges())
}

func rating(v float64) *float64 { return &v }

func TestApplyRatingBounds(t *testing.T) {
	unrated := recipe.Recipe{ID: 1}
	tasty := recipe.Recipe{ID: 2, TasteRating: rating(4.5), DifficultyRating: rating(3)}
	bland := recipe.Recipe{ID: 3, TasteRating: rating(2), HealthRating: rating(5)}
	all := []recipe.Recipe{unrated, tasty, bland}

	t.Run("DefaultRatingSatisfiesMinOne", func(t *testing.T) {
		c := Criteria{}
		c.SetRange(DifficultyRating, "1", "")
		assert.Equal(t, []recipe.Recipe{unrated, tasty, bland}, ApplyRatingBounds(all, c))
	})

	t.Run("DefaultRatingFailsMinTwo", func(t *testing.T) {
		c := Criteria{}
		c.SetRange(DifficultyRating, "2", "")
		assert.Equal(t, []recipe.Recipe{tasty}, ApplyRatingBounds(all, c))
	})

	t.Run("MinAndMax", func(t *testing.T) {
		c := Criteria{}
		c.SetRange(TasteRating, "1.5", "3")
		assert.Equal(t, []recipe.Recipe{bland}, ApplyRatingBounds(all, c))
	})

	t.Run("EveryBoundMustHold", func(t *testing.T) {
		c := Criteria{}
		c.SetRange(TasteRating, "", "4")
		c.SetRange(HealthRating, "", "2")
		assert.Equal(t, []recipe.Recipe{unrated}, ApplyRatingBounds(all, c))
	})

	t.Run("BlankBoundsKeepEverything", func(t *testing.T) {
		c := Criteria{}
		c.SetRange(TasteRating, " ", "")
		assert.Equal(t, all, ApplyRatingBounds(all, c))
	})
}

func TestParseArgs(t *testing.T) {
	c, err := ParseArgs([]string{"MIN_COST=3", " max_calories = 700 ", "", "diet_info=vegan", "diet_info=halal"})
	require.NoError(t, err)

	assert.Equal(t, Range{Min: "3"}, c.Ranges[Cost])
	assert.Equal(t, Range{Max: "700"}, c.Ranges[Calories])
	assert.Equal(t, []string{"vegan", "halal"}, c.DietInfo)

	_, err = ParseArgs([]string{"cheap"})
	assert.Error(t, err)
	_, err = ParseArgs([]string{"=5"})
	assert.Error(t, err)
}
