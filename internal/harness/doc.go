// Package harness runs declarative store scenarios and checks their
// outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: damage_and_heal
//	description: "What this scenario validates"
//	initial:                    # or initial_file: world.cue
//	  player: { hp: 100 }
//	  log: []
//	component_index: entities   # optional
//	observe: ["player.hp", "log.*"]
//	steps:
//	  - name: hit
//	    mutations:
//	      - set: { path: player.hp, value: 90 }
//	      - push: { path: log, value: "hit" }
//	  - name: bad push
//	    expect_valid: false
//	    mutations:
//	      - push: { path: player.hp, value: 1 }
//	  - mutations:
//	      - update: { path: player.hp, op: increment, by: 5 }
//	      - remove_where: { path: log, equals: "hit" }
//	      - remove_key: { path: player.shield }
//	assertions:
//	  - type: state_equals
//	    path: player.hp
//	    value: 95
//	  - type: diff_contains
//	    step: 0
//	    path: player.hp
//	    from: 100
//	    to: 90
//
// # Assertion Types
//
//   - state_equals: the final value at path (wildcards allowed) equals value
//   - state_absent: nothing exists at path in the final state
//   - diff_contains: a step's diff has an entry matching path, and from/to when given
//   - history_length: the store recorded exactly count transactions
//   - entities_with_component: the component index lists exactly these entities
//   - notification_count: the subscription for pattern was called count times
//
// # Deterministic Testing
//
// Every run uses a fresh store with testutil.DeterministicClock as its time
// source and logging discarded, so the canonical trace of a scenario is
// byte-stable and can be compared with a golden file.
package harness
