package kpm

// Exchange refreshes the ghost region of the ring's current slot from
// the neighboring domains, one axis at a time in ascending order. Axes
// exchanged later see the refreshed ghosts of earlier axes, so corner
// and edge cells propagate without a dedicated diagonal exchange.
//
// Protocol per axis: gather both publish layers into the private
// scratch, copy them into this worker's shared staging slot, barrier,
// read both neighbor slots back into the scratch, barrier, scatter into
// the ghost layers. The entry barrier guarantees no worker publishes
// while another still reads the previous step's state.
func (e *Engine[T]) Exchange(v *Vector[T]) {
	g, c := e.geom, e.ctx
	col := v.Current()

	c.barrier.Wait()

	for d := 0; d < g.Dim(); d++ {
		b := g.Border[d]
		low := e.scratch[:b]
		high := e.scratch[b : 2*b]

		for p, i := range g.PublishIndices(d, 0) {
			low[p] = col[i]
		}
		for p, i := range g.PublishIndices(d, 1) {
			high[p] = col[i]
		}
		own := c.slot(g.Worker)
		copy(own[:b], low)
		copy(own[b:2*b], high)

		c.barrier.Wait()

		// The low-side ghost mirrors the left neighbor's high publish
		// layer and vice versa; position p lines up by construction of
		// layerIndices, so no index translation is needed.
		left := c.slot(g.Neighbors[d][0])
		right := c.slot(g.Neighbors[d][1])
		copy(low, left[b:2*b])
		copy(high, right[:b])

		c.barrier.Wait()

		for p, i := range g.GhostIndices(d, 0) {
			col[i] = low[p]
		}
		for p, i := range g.GhostIndices(d, 1) {
			col[i] = high[p]
		}
	}
}
