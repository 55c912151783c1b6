package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Transforms is the matrix set pushed to a program each frame.
type Transforms struct {
	// ModelView is view·model.
	ModelView mgl32.Mat4

	// Projection is the perspective projection.
	Projection mgl32.Mat4

	// NormalMatrix is transpose(inverse(upper-3x3(ModelView))).
	NormalMatrix mgl32.Mat3
}

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	model      mgl32.Mat4
	view       mgl32.Mat4
	projection mgl32.Mat4
}

// Camera defines the interface for the camera system.
// The camera holds a look-at view, a perspective projection and the model matrix of the single
// object it looks at, and recomputes the derived matrices whenever one of them changes.
type Camera interface {
	// Eye returns the camera position.
	Eye() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// SetEye moves the camera and recomputes the view matrix.
	//
	// Parameters:
	//   - eye: the new camera position
	SetEye(eye mgl32.Vec3)

	// SetAspect sets the aspect ratio and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetViewport sets the aspect ratio from a framebuffer size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	SetViewport(width, height int)

	// Model returns the model matrix.
	Model() mgl32.Mat4

	// SetModel replaces the model matrix.
	SetModel(m mgl32.Mat4)

	// Rotate post-multiplies the model matrix by a rotation, so successive calls accumulate in
	// object space.
	//
	// Parameters:
	//   - angle: the rotation in radians
	//   - axis: the rotation axis; normalized before use
	Rotate(angle float32, axis mgl32.Vec3)

	// View returns the look-at view matrix.
	View() mgl32.Mat4

	// Projection returns the perspective projection matrix.
	Projection() mgl32.Mat4

	// Transforms returns the model-view, projection and normal matrices.
	//
	// Returns:
	//   - Transforms: the matrix set for the current frame
	Transforms() Transforms
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at (0, 0, 1) looking at the origin with a 45 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{0, 0, 1},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(45),
		aspect: 1.0,
		near:   0.1,
		far:    1000.0,
		model:  mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateView()
	c.updateProjection()
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
	c.updateView()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

func (c *cameraImpl) Model() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

func (c *cameraImpl) SetModel(m mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = m
}

func (c *cameraImpl) Rotate(angle float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = c.model.Mul4(mgl32.HomogRotate3D(angle, axis.Normalize()))
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Transforms() Transforms {
	c.mu.Lock()
	defer c.mu.Unlock()

	mv := c.view.Mul4(c.model)
	return Transforms{
		ModelView:    mv,
		Projection:   c.projection,
		NormalMatrix: NormalMatrix(mv),
	}
}

// NormalMatrix returns transpose(inverse(upper-3x3(m))). A singular m yields the zero matrix.
//
// Parameters:
//   - m: a model-view matrix
//
// Returns:
//   - mgl32.Mat3: the matrix that transforms normals the way m transforms positions
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// updateView recomputes the view matrix. Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	c.view = mgl32.LookAtV(c.eye, c.target, c.up)
}

// updateProjection recomputes the projection matrix. Caller must hold the mutex.
// A non-finite or non-positive aspect leaves the previous projection in place.
func (c *cameraImpl) updateProjection() {
	a := float64(c.aspect)
	if a <= 0 || math.IsInf(a, 0) || math.IsNaN(a) {
		return
	}
	c.projection = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}
