// Command tinyrt-render is the example program wiring every collaborator
// package together end to end: it loads a mesh with meshio, builds one of
// the four accelerators over it, shoots one ray per pixel of an
// orthographic camera framing the mesh, and writes the hit-distance image
// with imageio. It exists to exercise the pipeline, not as a renderer in
// its own right — shading is a single grayscale ramp by hit distance.
package main

import (
	"image/color"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/tinyrt/tinyrt/bvh"
	"github.com/tinyrt/tinyrt/grid"
	"github.com/tinyrt/tinyrt/imageio"
	"github.com/tinyrt/tinyrt/kdtree"
	"github.com/tinyrt/tinyrt/mailbox"
	"github.com/tinyrt/tinyrt/meshio"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/qbvh"
	"github.com/tinyrt/tinyrt/scratch"
	"github.com/tinyrt/tinyrt/treeutil"
	"github.com/tinyrt/tinyrt/vecmath"
)

func main() {
	app := &cli.App{
		Name:  "tinyrt-render",
		Usage: "render a mesh's hit-distance image with a chosen acceleration structure",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mesh", Required: true, Usage: "path to a binary PLY triangle mesh"},
			&cli.StringFlag{Name: "out", Value: "out.ppm", Usage: "output PPM path"},
			&cli.StringFlag{Name: "builder", Value: "bvh-sah", Usage: "grid | bvh-median | bvh-sah | qbvh | kdtree"},
			&cli.IntFlag{Name: "width", Value: 512},
			&cli.IntFlag{Name: "height", Value: 512},
			&cli.Float64Flag{Name: "density", Value: 2.0, Usage: "grid builder: target cells per object"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger, _ := zap.NewProduction()
		logger.Sugar().Fatalw("tinyrt-render failed", "error", err)
	}
}

func run(c *cli.Context) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return errors.Wrap(err, "constructing logger")
	}
	defer logger.Sync() //nolint:errcheck

	f, err := os.Open(c.String("mesh"))
	if err != nil {
		return errors.Wrap(err, "opening mesh file")
	}
	defer f.Close()

	mesh, err := meshio.LoadPLY(f)
	if err != nil {
		return errors.Wrap(err, "loading mesh")
	}
	logger.Sugar().Infow("mesh loaded", "triangles", mesh.Count())

	caster, err := buildAccelerator(c.String("builder"), mesh, float32(c.Float64("density")), logger)
	if err != nil {
		return err
	}

	width, height := c.Int("width"), c.Int("height")
	fb := imageio.NewFramebuffer(width, height)
	renderOrthographic(fb, mesh, caster)

	out, err := os.Create(c.String("out"))
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer out.Close()

	if err := imageio.WritePPM(out, fb); err != nil {
		return err
	}
	logger.Sugar().Infow("wrote image", "path", c.String("out"))
	return nil
}

// caster abstracts over the four accelerators' Raycast signatures so
// renderOrthographic doesn't need a build-choice switch per pixel.
type caster func(ray *vecmath.Ray, hit *objset.TriangleRayHit) bool

var rayStreamArena = scratch.NewArena(64 << 10)

// queryArena returns the arena backing this program's one ray stream.
// The render loop runs a single stream on a single goroutine, so one
// arena (and one traversal stack drawn from it, held for the whole run)
// suffices.
func queryArena() *scratch.Arena {
	return rayStreamArena
}

func buildAccelerator(kind string, mesh *objset.BasicMesh, density float32, logger *zap.Logger) (caster, error) {
	switch kind {
	case "grid":
		g, err := grid.Build(mesh, density)
		if err != nil {
			return nil, errors.Wrap(err, "building grid")
		}
		logger.Sugar().Infow("grid built", "dims", g.Dims, "cost", g.Cost(1, 1))
		mb := mailbox.NewDirectMap(mesh.Count())
		return func(ray *vecmath.Ray, hit *objset.TriangleRayHit) bool {
			mb.Reset()
			return grid.Raycast[*mailbox.DirectMap](g, mesh, ray, hit, mb)
		}, nil

	case "bvh-median":
		tree, err := bvh.NewMedianCutBuilder(bvh.DefaultOptions()).Build(mesh)
		if err != nil {
			return nil, errors.Wrap(err, "building median-cut bvh")
		}
		logStats(logger, "bvh-median", tree.Stats())
		stack, _ := scratch.ScratchArray[int32](queryArena(), tree.StackSize())
		return func(ray *vecmath.Ray, hit *objset.TriangleRayHit) bool {
			return bvh.Raycast[mailbox.Null](tree, mesh, ray, hit, mailbox.Null{}, stack)
		}, nil

	case "bvh-sah":
		tree, err := bvh.NewSAHBuilder(bvh.DefaultOptions(), 16, 1.0, 1.0).Build(mesh)
		if err != nil {
			return nil, errors.Wrap(err, "building SAH bvh")
		}
		logStats(logger, "bvh-sah", tree.Stats())
		stack, _ := scratch.ScratchArray[int32](queryArena(), tree.StackSize())
		return func(ray *vecmath.Ray, hit *objset.TriangleRayHit) bool {
			return bvh.Raycast[mailbox.Null](tree, mesh, ray, hit, mailbox.Null{}, stack)
		}, nil

	case "qbvh":
		tree, err := qbvh.Build(mesh, bvh.DefaultOptions(), 16, 1.0, 1.0)
		if err != nil {
			return nil, errors.Wrap(err, "building qbvh")
		}
		// The mesh serves only this one structure here, so reordering it
		// into leaf-reference order is safe and lets every leaf run as a
		// single batched intersection.
		tree.RemapToRefOrder(mesh)
		stack, _ := scratch.ScratchArray[int32](queryArena(), tree.StackSize())
		return func(ray *vecmath.Ray, hit *objset.TriangleRayHit) bool {
			return qbvh.Raycast[mailbox.Null](tree, mesh, ray, hit, mailbox.Null{}, stack)
		}, nil

	case "kdtree":
		tree, err := kdtree.Build(mesh, kdtree.DefaultOptions())
		if err != nil {
			return nil, errors.Wrap(err, "building kd-tree")
		}
		mb := mailbox.NewFIFO(8)
		stack, _ := scratch.ScratchArray[kdtree.StackEntry](queryArena(), tree.StackSize())
		return func(ray *vecmath.Ray, hit *objset.TriangleRayHit) bool {
			mb.Reset()
			return kdtree.Raycast[*mailbox.FIFO](tree, mesh, ray, hit, mb, stack)
		}, nil

	default:
		return nil, errors.Errorf("unknown builder %q", kind)
	}
}

func logStats(logger *zap.Logger, name string, s treeutil.Stats) {
	logger.Sugar().Infow("tree built",
		"builder", name,
		"nodes", s.NodeCount,
		"leaves", s.LeafCount,
		"maxDepth", s.MaxDepth,
		"usedBytes", s.UsedBytes,
	)
}

// renderOrthographic fits an orthographic camera looking along +z to the
// mesh's x/y bounds and fires one ray per pixel.
func renderOrthographic(fb *imageio.Framebuffer, mesh *objset.BasicMesh, cast caster) {
	box := mesh.AABB()
	extent := box.Extent()
	margin := float32(1.05)
	halfW := extent[0] * margin * 0.5
	halfH := extent[1] * margin * 0.5
	if halfW == 0 {
		halfW = 1
	}
	if halfH == 0 {
		halfH = 1
	}
	center := box.Center()
	zStart := box.Min[2] - extent[2] - 1

	maxDist := extent[2] + 2
	if maxDist <= 0 {
		maxDist = 1e6
	}

	for py := 0; py < fb.Height; py++ {
		v := (float32(py)+0.5)/float32(fb.Height)*2 - 1
		y := center[1] + v*halfH
		for px := 0; px < fb.Width; px++ {
			u := (float32(px)+0.5)/float32(fb.Width)*2 - 1
			x := center[0] + u*halfW

			ray := vecmath.NewRay(vecmath.NewVec3(x, y, zStart), vecmath.NewVec3(0, 0, 1), 0, maxDist)
			hit := objset.NewMiss()
			if cast(&ray, &hit) {
				shade := 1 - ray.MaxDistance/maxDist
				g := uint8(shade * 255)
				fb.Set(px, py, color.RGBA{R: g, G: g, B: g, A: 255})
			}
		}
	}
}
