package physics

import (
	"math"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/vmath"
)

// InsertResources installs the exclusive physics resources into a domain
// The presentation domain owns them between episodes
func InsertResources(rs *engine.ResourceStore, cfg *Configuration) {
	if cfg == nil {
		cfg = DefaultConfiguration()
	}
	engine.AddResource(rs, NewContext())
	engine.AddResource(rs, cfg)
	engine.AddResource(rs, NewEvents[CollisionEvent]())
	engine.AddResource(rs, NewEvents[ContactForceEvent]())
}

// SyncBackend creates bodies and colliders for new entities and pushes component state into the context
func SyncBackend(w *engine.World) {
	ctx := engine.MustGetResource[*Context](w.Resources)

	engine.Components[component.RigidBody](w).Each(func(e core.Entity, rb component.RigidBody) {
		b := ctx.bodyFor(w, e)
		b.kind = rb.Kind
		b.mass = rb.Mass
		if b.mass <= 0 {
			b.mass = 1
		}

		if tr, ok := engine.GetComponent[component.Transform](w, e); ok {
			b.pos = tr.Translation
			b.rot = tr.Rotation
			b.scale = tr.Scale
		} else if gt, ok := engine.GetComponent[component.GlobalTransform](w, e); ok {
			b.pos = gt.Translation
			b.rot = gt.Rotation
			b.scale = gt.Scale
		}
		if vel, ok := engine.GetComponent[component.Velocity](w, e); ok {
			b.linVel = vel.Linear
			b.angVel = vel.Angular
		}
		b.damping, _ = engine.GetComponent[component.Damping](w, e)
		b.gravityScale = 1
		if gs, ok := engine.GetComponent[component.GravityScale](w, e); ok {
			b.gravityScale = gs.Scale
		}
		if sl, ok := engine.GetComponent[component.Sleeping](w, e); ok {
			b.sleeping = sl.Sleeping
			b.lowTicks = sl.LowTicks
			// Non-zero velocity on a sleeping body can only come from outside the step
			if b.sleeping && (vmath.V3FMagSq(b.linVel) > 0 || vmath.V3FMagSq(b.angVel) > 0) {
				b.sleeping = false
				b.lowTicks = 0
			}
		}
	})

	engine.Components[component.Collider](w).Each(func(e core.Entity, shape component.Collider) {
		col := ctx.colliderFor(w, e)
		col.shape = shape
		if gt, ok := engine.GetComponent[component.GlobalTransform](w, e); ok {
			col.origin = gt.Translation
		} else if tr, ok := engine.GetComponent[component.Transform](w, e); ok {
			col.origin = tr.Translation
		}
	})
}

func (c *Context) bodyFor(w *engine.World, e core.Entity) *body {
	if h, ok := engine.GetComponent[component.RigidBodyHandle](w, e); ok {
		if b, ok := c.bodies[h.ID]; ok && b.entity == e {
			return b
		}
	}
	if id, ok := c.entityBody[e]; ok {
		engine.SetComponent(w, e, component.RigidBodyHandle{ID: id})
		return c.bodies[id]
	}

	id := c.nextBody
	c.nextBody++
	b := &body{entity: e, rot: vmath.QuatIdentity, scale: vmath.V3FOne, gravityScale: 1}
	c.bodies[id] = b
	c.entityBody[e] = id
	engine.SetComponent(w, e, component.RigidBodyHandle{ID: id})
	return b
}

func (c *Context) colliderFor(w *engine.World, e core.Entity) *collider {
	if h, ok := engine.GetComponent[component.ColliderHandle](w, e); ok {
		if col, ok := c.colliders[h.ID]; ok && col.entity == e {
			return col
		}
	}
	if id, ok := c.entityCollider[e]; ok {
		engine.SetComponent(w, e, component.ColliderHandle{ID: id})
		return c.colliders[id]
	}

	id := c.nextCollider
	c.nextCollider++
	col := &collider{entity: e}
	c.colliders[id] = col
	c.entityCollider[e] = id
	engine.SetComponent(w, e, component.ColliderHandle{ID: id})
	return col
}

// StepSimulation advances the context by the signed delta of the domain clock
// A negative delta runs the integration in reverse; contacts make that approximate
func StepSimulation(w *engine.World) {
	ctx := engine.MustGetResource[*Context](w.Resources)
	cfg := engine.MustGetResource[*Configuration](w.Resources)

	ctx.Steps++
	if !cfg.Active {
		return
	}
	dt := engine.SingleTimeline(w).Delta()
	if dt == 0 {
		return
	}

	ids := ctx.sortedBodies()
	for _, id := range ids {
		b := ctx.bodies[id]
		switch b.kind {
		case component.BodyFixed:
			continue
		case component.BodyKinematic:
			b.pos = vmath.V3FAdd(b.pos, vmath.V3FScale(b.linVel, dt))
			b.rot = integrateRotation(b.rot, b.angVel, dt)
		case component.BodyDynamic:
			if b.sleeping {
				continue
			}
			integrateDynamic(b, cfg.Gravity, dt)
		}
	}

	ctx.resolveContacts(w, cfg, dt)

	for _, id := range ids {
		b := ctx.bodies[id]
		if b.kind != component.BodyDynamic || b.sleeping {
			continue
		}
		if vmath.V3FMag(b.linVel) < cfg.SleepLinearThreshold {
			b.lowTicks++
			if cfg.SleepTicks > 0 && b.lowTicks >= cfg.SleepTicks {
				b.sleeping = true
				b.linVel = vmath.Vec3F{}
				b.angVel = vmath.Vec3F{}
			}
		} else {
			b.lowTicks = 0
		}
	}
}

// integrateDynamic is semi-implicit Euler; the dt < 0 branch is its exact inverse
func integrateDynamic(b *body, gravity vmath.Vec3F, dt float64) {
	g := vmath.V3FScale(gravity, b.gravityScale*dt)
	h := math.Abs(dt)

	if dt > 0 {
		b.linVel = vmath.V3FScale(vmath.V3FAdd(b.linVel, g), 1/(1+h*b.damping.Linear))
		b.angVel = vmath.V3FScale(b.angVel, 1/(1+h*b.damping.Angular))
		b.pos = vmath.V3FAdd(b.pos, vmath.V3FScale(b.linVel, dt))
		b.rot = integrateRotation(b.rot, b.angVel, dt)
		return
	}

	b.pos = vmath.V3FAdd(b.pos, vmath.V3FScale(b.linVel, dt))
	b.rot = integrateRotation(b.rot, b.angVel, dt)
	b.linVel = vmath.V3FAdd(vmath.V3FScale(b.linVel, 1+h*b.damping.Linear), g)
	b.angVel = vmath.V3FScale(b.angVel, 1+h*b.damping.Angular)
}

func integrateRotation(rot vmath.Quat, angVel vmath.Vec3F, dt float64) vmath.Quat {
	speed := vmath.V3FMag(angVel)
	if speed == 0 {
		return rot
	}
	return vmath.QuatFromAxisAngle(angVel, speed*dt).Mul(rot).Normalize()
}

type ball struct {
	col    *collider
	body   *body
	pos    vmath.Vec3F
	vel    vmath.Vec3F
	mass   float64
	static bool
}

func (c *Context) resolveContacts(w *engine.World, cfg *Configuration, dt float64) {
	var balls []*ball
	var planes []*collider

	for _, id := range c.sortedColliders() {
		col := c.colliders[id]
		switch col.shape.Shape {
		case component.ShapeBall:
			bl := &ball{col: col, pos: col.origin, mass: staticMass, static: true}
			if bid, ok := c.entityBody[col.entity]; ok {
				b := c.bodies[bid]
				bl.body = b
				bl.pos = b.pos
				bl.vel = b.linVel
				if b.kind == component.BodyDynamic {
					bl.mass = b.mass
					bl.static = false
				}
			}
			balls = append(balls, bl)
		case component.ShapeHalfSpace:
			planes = append(planes, col)
		}
	}

	h := math.Abs(dt)
	current := make(map[pairKey]struct{})
	forces := engine.MustGetResource[*Events[ContactForceEvent]](w.Resources)

	for i := 0; i < len(balls); i++ {
		a := balls[i]
		for j := i + 1; j < len(balls); j++ {
			b := balls[j]
			if a.static && b.static {
				continue
			}
			rA, rB := a.col.shape.Radius, b.col.shape.Radius
			if vmath.V3FMagSq(vmath.V3FSub(b.pos, a.pos)) > (rA+rB)*(rA+rB) {
				continue
			}
			pair := makePair(a.col.entity, b.col.entity)
			current[pair] = struct{}{}

			// Two sleepers keep touching without being resolved
			if sleepingOrStatic(a) && sleepingOrStatic(b) {
				continue
			}

			SeparateOverlap3DF(&a.pos, &b.pos, rA, rB, a.mass, b.mass)
			restitution := (a.col.shape.Restitution + b.col.shape.Restitution) * 0.5
			impulse := ElasticCollision3DF(&a.pos, &b.pos, &a.vel, &b.vel, a.mass, b.mass, restitution)
			if impulse > 0 {
				wake(a)
				wake(b)
				emitForce(forces, a.col, b.col, impulse/h)
			}
			a.commit()
			b.commit()
		}
	}

	for _, bl := range balls {
		if bl.static || bl.body.sleeping {
			// A resting body keeps its plane contacts alive
			for _, pl := range planes {
				depth := vmath.V3FDot(vmath.V3FSub(bl.pos, pl.origin), pl.shape.Normal) - bl.col.shape.Radius
				if !bl.static && depth <= 1e-9 {
					current[makePair(bl.col.entity, pl.entity)] = struct{}{}
				}
			}
			continue
		}
		for _, pl := range planes {
			restitution := (bl.col.shape.Restitution + pl.shape.Restitution) * 0.5
			dv, touching := ReflectHalfSpace(&bl.pos, &bl.vel, bl.col.shape.Radius, pl.origin, pl.shape.Normal, restitution, cfg.RestingSpeed)
			if !touching {
				continue
			}
			current[makePair(bl.col.entity, pl.entity)] = struct{}{}
			if dv > 0 {
				emitForce(forces, bl.col, pl, bl.mass*dv/h)
			}
		}
		bl.commit()
	}

	c.diffContacts(w, current)
}

func (bl *ball) commit() {
	if bl.static || bl.body == nil {
		return
	}
	bl.body.pos = bl.pos
	bl.body.linVel = bl.vel
}

func sleepingOrStatic(bl *ball) bool {
	return bl.static || bl.body.sleeping
}

func wake(bl *ball) {
	if bl.static {
		return
	}
	bl.body.sleeping = false
	bl.body.lowTicks = 0
}

func emitForce(events *Events[ContactForceEvent], a, b *collider, magnitude float64) {
	threshold := a.shape.ForceEventThreshold
	if t := b.shape.ForceEventThreshold; t > 0 && (threshold == 0 || t < threshold) {
		threshold = t
	}
	if threshold > 0 && magnitude > threshold {
		events.Send(ContactForceEvent{A: a.entity, B: b.entity, Magnitude: magnitude})
	}
}

func (c *Context) diffContacts(w *engine.World, current map[pairKey]struct{}) {
	collisions := engine.MustGetResource[*Events[CollisionEvent]](w.Resources)

	for _, p := range sortedPairs(current) {
		if _, ok := c.contacts[p]; !ok && c.reportsEvents(p) {
			collisions.Send(CollisionEvent{Kind: CollisionStarted, A: p.a, B: p.b})
		}
	}
	for _, p := range sortedPairs(c.contacts) {
		if _, ok := current[p]; !ok && c.reportsEvents(p) {
			collisions.Send(CollisionEvent{Kind: CollisionStopped, A: p.a, B: p.b})
		}
	}
	c.contacts = current
}

func (c *Context) reportsEvents(p pairKey) bool {
	for _, e := range []core.Entity{p.a, p.b} {
		if id, ok := c.entityCollider[e]; ok && c.colliders[id].shape.ActiveEvents {
			return true
		}
	}
	return false
}

// PhysicsWriteback copies body state back onto the simulation domain components
func PhysicsWriteback(w *engine.World) {
	ctx := engine.MustGetResource[*Context](w.Resources)

	for _, id := range ctx.sortedBodies() {
		b := ctx.bodies[id]
		if b.kind == component.BodyFixed || !w.IsAlive(b.entity) {
			continue
		}
		engine.SetComponent(w, b.entity, component.Transform{
			Translation: b.pos,
			Rotation:    b.rot,
			Scale:       b.scale,
		})
		engine.SetComponent(w, b.entity, component.Velocity{Linear: b.linVel, Angular: b.angVel})
		engine.SetComponent(w, b.entity, component.Sleeping{Sleeping: b.sleeping, LowTicks: b.lowTicks})
	}
}

// DetectDespawn drops bodies and colliders whose entity or component no longer exists in the domain
func DetectDespawn(w *engine.World) {
	ctx := engine.MustGetResource[*Context](w.Resources)

	for _, id := range ctx.sortedBodies() {
		e := ctx.bodies[id].entity
		if !w.IsAlive(e) || !engine.HasComponent[component.RigidBody](w, e) {
			ctx.removeBody(id)
		}
	}
	for _, id := range ctx.sortedColliders() {
		e := ctx.colliders[id].entity
		if !w.IsAlive(e) || !engine.HasComponent[component.Collider](w, e) {
			ctx.removeCollider(id)
		}
	}
}
