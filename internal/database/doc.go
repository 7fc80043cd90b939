// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package database provides DuckDB persistence for the affinity service.

It stores three tables:

  - products: catalog mirror (price nullable, seasonal months as a bitmask)
  - user_product_interactions: one counter row per (user, product, type)
  - product_relationships: directed, typed edges between products

# Concurrency

Counter and edge writes are single ON CONFLICT statements, so increments are
never lost between concurrent writers. Writers of the same row are also
serialized in-process with a per-key mutex, and DuckDB transaction conflicts
are retried up to three times with 1ms, 2ms and 4ms backoff. Internal DuckDB
errors fail fast.

Edges are always written in pairs (UpsertEdgePair) inside one transaction so
A->B and B->A carry the same strength.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	err = db.UpsertInteraction(ctx, "u1", "p1", recommend.InteractionPurchase, time.Now())

*DB satisfies recommend.Catalog, recommend.InteractionStore and
recommend.GraphStore.
*/
package database
