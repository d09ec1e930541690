package curves

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFor(t *testing.T) {
	tests := []struct {
		n    int
		want Kind
	}{
		{0, KindNone},
		{1, KindNone},
		{2, KindLinear},
		{3, KindQuadratic},
		{4, KindCubic},
		{9, KindCubic},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindFor(tt.n))
		})
	}
}

func TestNewCurveFuncAbsent(t *testing.T) {
	fn, err := NewCurveFunc(nil)
	require.NoError(t, err)
	assert.Nil(t, fn)

	fn, err = NewCurveFunc(Pts([2]float64{10, 20}))
	require.NoError(t, err)
	assert.Nil(t, fn)
}

func TestNewCurveFuncRejectsUnorderedInputs(t *testing.T) {
	_, err := NewCurveFunc(Pts([2]float64{0, 0}, [2]float64{100, 10}, [2]float64{100, 20}))
	assert.ErrorIs(t, err, ErrNotIncreasing)

	_, err = NewCurveFunc(Pts([2]float64{50, 0}, [2]float64{10, 10}))
	assert.ErrorIs(t, err, ErrNotIncreasing)
}

func TestIdentityRamp(t *testing.T) {
	fn, err := NewCurveFunc(Pts([2]float64{0, 0}, [2]float64{255, 255}))
	require.NoError(t, err)

	table, err := BuildTable[uint8](fn, 256)
	require.NoError(t, err)
	require.Len(t, table, 256)
	for i, v := range table {
		assert.Equal(t, uint8(i), v)
	}
	assert.True(t, table.Identity())
}

func TestQuadraticPassesThroughPoints(t *testing.T) {
	fn, err := NewCurveFunc(Pts([2]float64{0, 0}, [2]float64{100, 50}, [2]float64{200, 200}))
	require.NoError(t, err)

	assert.InDelta(t, 0, fn(0), 1e-9)
	assert.InDelta(t, 50, fn(100), 1e-9)
	assert.InDelta(t, 200, fn(200), 1e-9)
	// y = x^2/200 fits all three points
	assert.InDelta(t, 150.0*150.0/200.0, fn(150), 1e-9)
}

func TestCubicReproducesCubicPolynomial(t *testing.T) {
	poly := func(x float64) float64 { return x * x * x / (255 * 255) }
	pts := Points{}
	for _, x := range []float64{0, 85, 170, 255} {
		pts = append(pts, Point{In: x, Out: poly(x)})
	}

	fn, err := NewCurveFunc(pts)
	require.NoError(t, err)
	for _, x := range []float64{0, 12.5, 50, 128, 200, 255} {
		assert.InDelta(t, poly(x), fn(x), 1e-6, "x=%g", x)
	}
}

func TestCubicSplineInterpolatesKnots(t *testing.T) {
	pts := Pts([2]float64{0, 0}, [2]float64{25, 21}, [2]float64{122, 153}, [2]float64{165, 206}, [2]float64{255, 255})
	fn, err := NewCurveFunc(pts)
	require.NoError(t, err)
	for _, p := range pts {
		assert.InDelta(t, p.Out, fn(p.In), 1e-6)
	}
}

func TestLinearBetweenKnots(t *testing.T) {
	fn, err := NewCurveFunc(Pts([2]float64{0, 10}, [2]float64{100, 60}))
	require.NoError(t, err)

	assert.InDelta(t, 10, fn(0), 1e-9)
	assert.InDelta(t, 35, fn(50), 1e-9)
	assert.InDelta(t, 60, fn(100), 1e-9)
}

func TestCubicOutsideKnotsIsNaN(t *testing.T) {
	fn, err := NewCurveFunc(Pts([2]float64{20, 0}, [2]float64{60, 70}, [2]float64{150, 160}, [2]float64{230, 255}))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(fn(19)))
	assert.True(t, math.IsNaN(fn(231)))
	assert.False(t, math.IsNaN(fn(230+1e-12)), "rounding past the end knot is absorbed")
	assert.InDelta(t, 255, fn(230), 1e-6)
}

func TestExtrapolationIsNaNAndTablesClampIt(t *testing.T) {
	fn, err := NewCurveFunc(Pts([2]float64{50, 50}, [2]float64{200, 200}))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(fn(10)))
	assert.True(t, math.IsNaN(fn(250)))

	table, err := BuildTable[uint8](fn, 256)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), table[10])
	assert.Equal(t, uint8(100), table[100])
	assert.Equal(t, uint8(0), table[255])
}

func TestTableEntriesStayInDomain(t *testing.T) {
	curves := []Points{
		Pts([2]float64{0, -50}, [2]float64{255, 400}),
		Pts([2]float64{0, 0}, [2]float64{128, 255}, [2]float64{255, 0}),
		Pts([2]float64{0, 255}, [2]float64{40, 0}, [2]float64{90, 255}, [2]float64{255, 0}),
	}
	for _, pts := range curves {
		fn, err := NewCurveFunc(pts)
		require.NoError(t, err)

		// uint16 storage so an unclamped value would be observable
		table, err := BuildTable[uint16](fn, 256)
		require.NoError(t, err)
		for i, v := range table {
			assert.LessOrEqual(t, v, uint16(255), "entry %d", i)
		}
	}
}

func TestBuildTableLength(t *testing.T) {
	fn := Func(func(x float64) float64 { return x })

	_, err := BuildTable[uint8](fn, 0)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = BuildTable[uint8](fn, 257)
	assert.ErrorIs(t, err, ErrInvalidLength)

	table, err := BuildTable[uint16](fn, 65536)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), table[65535])

	table8, err := BuildTable[uint8](nil, 0)
	require.NoError(t, err)
	assert.Nil(t, table8)
}

func TestCompose(t *testing.T) {
	double := Func(func(x float64) float64 { return 2 * x })
	inc := Func(func(x float64) float64 { return x + 1 })

	assert.Nil(t, Compose(nil, nil))
	assert.Equal(t, 14.0, Compose(double, nil)(7))
	assert.Equal(t, 14.0, Compose(nil, double)(7))
	// master first, then channel
	assert.Equal(t, 7.0, Compose(inc, double)(3))
	assert.Equal(t, 8.0, Compose(double, inc)(3))
}

func TestApply(t *testing.T) {
	invert := make(Table[uint8], 256)
	for i := range invert {
		invert[i] = uint8(255 - i)
	}

	t.Run("absent table leaves destination unchanged", func(t *testing.T) {
		var none Table[uint8]
		src := []uint8{1, 2, 3}
		dst := []uint8{9, 9, 9}
		require.NoError(t, none.Apply(src, dst))
		assert.Equal(t, []uint8{9, 9, 9}, dst)
	})

	t.Run("separate destination", func(t *testing.T) {
		src := []uint8{0, 10, 255}
		dst := make([]uint8, 3)
		require.NoError(t, invert.Apply(src, dst))
		assert.Equal(t, []uint8{255, 245, 0}, dst)
		assert.Equal(t, []uint8{0, 10, 255}, src)
	})

	t.Run("in place", func(t *testing.T) {
		buf := []uint8{0, 10, 255}
		require.NoError(t, invert.Apply(buf, buf))
		assert.Equal(t, []uint8{255, 245, 0}, buf)
	})

	t.Run("length mismatch", func(t *testing.T) {
		err := invert.Apply([]uint8{1, 2}, []uint8{1})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("short table", func(t *testing.T) {
		short := Table[uint8]{0, 1, 2, 3}
		err := short.Apply([]uint8{1, 200}, make([]uint8, 2))
		assert.ErrorIs(t, err, ErrOutOfDomain)
	})
}

func TestPointsValidate(t *testing.T) {
	assert.NoError(t, Portra.Master.Validate(255))
	assert.ErrorIs(t, Pts([2]float64{0, 0}, [2]float64{300, 10}).Validate(255), ErrOutOfRange)
	assert.ErrorIs(t, Pts([2]float64{0, -1}, [2]float64{10, 10}).Validate(255), ErrOutOfRange)
	assert.ErrorIs(t, Pts([2]float64{10, 0}, [2]float64{10, 10}).Validate(255), ErrNotIncreasing)
}

func TestPortraConstants(t *testing.T) {
	assert.Equal(t, Points{{0, 0}, {23, 20}, {157, 173}, {255, 255}}, Portra.Master)
	assert.Equal(t, Points{{0, 0}, {23, 20}, {231, 228}, {255, 255}}, Portra.Blue)
	assert.Equal(t, Points{{0, 0}, {23, 20}, {189, 196}, {255, 255}}, Portra.Green)
	assert.Equal(t, Points{{0, 0}, {69, 69}, {213, 218}, {255, 255}}, Portra.Red)
}

func TestPresetTables(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			p, err := PresetByName(name)
			require.NoError(t, err)

			tables, err := p.Tables8()
			require.NoError(t, err)
			assert.NotNil(t, tables.Blue)
			assert.NotNil(t, tables.Green)
			assert.NotNil(t, tables.Red)
		})
	}

	_, err := PresetByName("kodachrome")
	assert.Error(t, err)
}

func TestPortraTablesComposeMasterFirst(t *testing.T) {
	tables, err := Portra.Tables8()
	require.NoError(t, err)

	master, err := NewCurveFunc(Portra.Master)
	require.NoError(t, err)
	red, err := NewCurveFunc(Portra.Red)
	require.NoError(t, err)

	for _, i := range []int{0, 23, 100, 157, 200, 255} {
		want := math.Round(math.Min(math.Max(red(master(float64(i))), 0), 255))
		if math.IsNaN(red(master(float64(i)))) {
			want = 0
		}
		assert.Equal(t, uint8(want), tables.Red[i], "input %d", i)
	}
	assert.Equal(t, uint8(0), tables.Blue[0])
	assert.Equal(t, uint8(255), tables.Blue[255])
}
