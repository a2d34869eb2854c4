// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch executes an execution plan of formatter batches as external
// processes under bounded parallelism.
//
// Results are stored in slots indexed by plan position, so the RunReport is
// always in plan order no matter which batch finishes first. With fail-fast
// enabled the first failure stops new dispatch; batches already running are
// awaited and recorded, batches never started are left out of the report.
package runbatch
