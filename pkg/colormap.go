package display

import (
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// ChargeColorMap returns the perceptually ordered map used for charge,
// defined on [0, 1].
func ChargeColorMap() palette.ColorMap {
	cm := moreland.Kindlmann()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm
}

// ChargeColors maps normalized values to colors whose alpha equals the
// normalized value, so denser charge is both brighter and more opaque.
func ChargeColors(normalized []float64) []color.NRGBA {
	cm := ChargeColorMap()
	out := make([]color.NRGBA, len(normalized))
	for i, v := range normalized {
		out[i] = chargeColor(cm, v)
	}
	return out
}

func chargeColor(cm palette.ColorMap, v float64) color.NRGBA {
	c, err := cm.At(v)
	if err != nil {
		return color.NRGBA{}
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	nc.A = uint8(v*255 + 0.5)
	return nc
}

// PointMinAlpha is the opacity floor of point-cloud samples, so the weakest
// hit of a cloud stays visible.
const PointMinAlpha = 128

// PointCloud is the unbinned rendering path: every sample keeps its own color
// derived from its own normalized charge.
type PointCloud struct {
	Points []Point3D
	Colors []color.NRGBA
}

func NewPointCloud(points []Point3D, weights []float64) PointCloud {
	colors := ChargeColors(Normalize(weights))
	for i := range colors {
		colors[i].A = max(colors[i].A, PointMinAlpha)
	}
	return PointCloud{Points: points, Colors: colors}
}

// VoxelColors maps every voxel of h to a color; empty voxels stay fully
// transparent.
func VoxelColors(h *Histogram3D) []color.NRGBA {
	return ChargeColors(Normalize(h.Data))
}
