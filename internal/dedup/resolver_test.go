package dedup

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suffixPolicy = Policy{Delimiter: "-"}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		siblings  []string
		policy    Policy
		want      string
	}{
		{"no collision", "foo.png", []string{"bar.png"}, suffixPolicy, "foo.png"},
		{"empty listing", "foo.png", nil, suffixPolicy, "foo.png"},
		{"first duplicate", "foo.png", []string{"foo.png"}, suffixPolicy, "foo-1.png"},
		{"max plus one", "foo.png", []string{"foo.png", "foo-1.png", "foo-2.png"}, suffixPolicy, "foo-3.png"},
		{"gaps are not filled", "foo.png", []string{"foo.png", "foo-7.png"}, suffixPolicy, "foo-8.png"},
		{"prefix mode", "foo.png", []string{"foo.png", "1-foo.png", "2-foo.png"}, Policy{AtStart: true, Delimiter: "-"}, "3-foo.png"},
		{"always on empty listing", "foo.png", nil, Policy{Delimiter: "-", Always: true}, "foo-1.png"},
		{"always without collision", "foo.png", []string{"foo-4.png"}, Policy{Delimiter: "-", Always: true}, "foo-5.png"},
		{"numbered sibling alone does not collide", "foo.png", []string{"foo-4.png"}, suffixPolicy, "foo.png"},
		{"other extension ignored", "foo.png", []string{"foo.png", "foo-9.jpg"}, suffixPolicy, "foo-1.png"},
		{"other delimiter ignored", "foo.png", []string{"foo.png", "foo_9.png"}, suffixPolicy, "foo-1.png"},
		{"non digits ignored", "foo.png", []string{"foo.png", "foo-x.png", "foo-.png"}, suffixPolicy, "foo-1.png"},
		{"custom delimiter", "foo.png", []string{"foo.png", "foo_2.png"}, Policy{Delimiter: "_"}, "foo_3.png"},
		{"multi char delimiter", "foo.png", []string{"foo.png", "foo--2.png"}, Policy{Delimiter: "--"}, "foo--3.png"},
		{"regex characters are literal", "a(b).c", []string{"a(b).c", "a(b)-2.c", "aXb-5.c"}, suffixPolicy, "a(b)-3.c"},
		{"plus and dot in stem", "x.y+z.png", []string{"x.y+z.png", "xzy+z-3.png"}, suffixPolicy, "x.y+z-1.png"},
		{"leading zeros", "foo.png", []string{"foo.png", "foo-007.png"}, suffixPolicy, "foo-8.png"},
		{"empty delimiter defaults", "foo.png", []string{"foo.png"}, Policy{}, "foo-1.png"},
		{"last dot splits extension", "foo.tar.gz", []string{"foo.tar.gz", "foo.tar-1.gz"}, suffixPolicy, "foo.tar-2.gz"},
		{"sub path kept", "images/foo.png", []string{"foo.png"}, suffixPolicy, "images/foo-1.png"},
		{"backslashes normalized", `images\sub\foo.png`, []string{"foo.png"}, suffixPolicy, "images/sub/foo-1.png"},
		{"oversized number without collision", "foo.png", []string{"foo-99999999999999999999.png"}, suffixPolicy, "foo.png"},
		{"siblings compared by base name", "foo.png", []string{"some/dir/foo.png", `other\foo-3.png`}, suffixPolicy, "foo-4.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.candidate, tt.siblings, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestResolve_Parts(t *testing.T) {
	got, err := Resolve("images/foo.png", []string{"foo.png"}, Policy{AtStart: true, Delimiter: "_"})
	require.NoError(t, err)
	assert.Equal(t, NameObj{Name: "images/1_foo.png", Stem: "images/1_foo", Extension: "png"}, got)

	got, err = Resolve("foo.png", nil, suffixPolicy)
	require.NoError(t, err)
	assert.Equal(t, NameObj{Name: "foo.png", Stem: "foo", Extension: "png"}, got)
}

func TestResolve_MissingExtension(t *testing.T) {
	for _, candidate := range []string{"foo", "", "dir.v2/foo"} {
		_, err := Resolve(candidate, []string{"foo"}, suffixPolicy)

		var malformed *MalformedNameError
		require.True(t, errors.As(err, &malformed), "candidate %q", candidate)
		assert.Equal(t, MissingExtension, malformed.Type)
	}
}

func TestResolve_UnparseableNumber(t *testing.T) {
	huge := "foo-99999999999999999999999.png"
	_, err := Resolve("foo.png", []string{"foo.png", huge}, suffixPolicy)

	var malformed *MalformedNameError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, UnparseableNumber, malformed.Type)
	assert.Equal(t, huge, malformed.Name)
	assert.ErrorIs(t, err, strconv.ErrRange)
}

func TestResolve_ListingOrderIrrelevant(t *testing.T) {
	a, err := Resolve("foo.png", []string{"foo-2.png", "foo.png", "foo-10.png", "foo-3.png"}, suffixPolicy)
	require.NoError(t, err)
	b, err := Resolve("foo.png", []string{"foo-10.png", "foo-3.png", "foo-2.png", "foo.png"}, suffixPolicy)
	require.NoError(t, err)
	assert.Equal(t, "foo-11.png", a.Name)
	assert.Equal(t, a, b)
}

func genStem() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool { return s != "" })
}

// Property: the resolved name never collides with a sibling.
func TestResolve_Property_NoCollision(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("result is absent from the listing", prop.ForAll(
		func(stem string, numbers []uint8, atStart, always bool) bool {
			policy := Policy{AtStart: atStart, Delimiter: "-", Always: always}
			siblings := []string{stem + ".png"}
			for _, n := range numbers {
				siblings = append(siblings, numbered(int(n), stem, policy)+".png")
			}

			got, err := Resolve(stem+".png", siblings, policy)
			if err != nil {
				return false
			}
			for _, s := range siblings {
				if s == got.Name {
					return false
				}
			}
			return true
		},
		genStem(),
		gen.SliceOf(gen.UInt8()),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: renumbering picks one past the highest number in use.
func TestResolve_Property_MaxPlusOne(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("next number is max+1", prop.ForAll(
		func(stem string, numbers []uint16) bool {
			siblings := []string{stem + ".png"}
			highest := 0
			for _, n := range numbers {
				siblings = append(siblings, fmt.Sprintf("%s-%d.png", stem, n))
				if int(n) > highest {
					highest = int(n)
				}
			}

			got, err := Resolve(stem+".png", siblings, suffixPolicy)
			return err == nil && got.Name == fmt.Sprintf("%s-%d.png", stem, highest+1)
		},
		genStem(),
		gen.SliceOf(gen.UInt16()),
	))

	properties.TestingRun(t)
}

// Property: a free name is returned unchanged unless Always is set.
func TestResolve_Property_FreeNameUnchanged(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("identity without collision", prop.ForAll(
		func(stem string, ext string) bool {
			candidate := stem + "." + ext
			got, err := Resolve(candidate, []string{"other." + ext}, suffixPolicy)
			return err == nil && got.Name == candidate && got.Stem == stem && got.Extension == ext
		},
		genStem(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// Property: resolving the output of a previous resolution against the
// updated listing keeps increasing the number.
func TestResolve_Property_RoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repeated resolution yields 1..n", prop.ForAll(
		func(stem string, rounds int, atStart bool) bool {
			policy := Policy{AtStart: atStart, Delimiter: "_"}
			siblings := []string{stem + ".jpg"}
			for i := 1; i <= rounds; i++ {
				got, err := Resolve(stem+".jpg", siblings, policy)
				if err != nil || got.Name != numbered(i, stem, policy)+".jpg" {
					return false
				}
				siblings = append(siblings, got.Name)
			}
			return true
		},
		genStem(),
		gen.IntRange(1, 20),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
