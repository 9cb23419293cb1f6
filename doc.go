// Package ecopulse provides a data cleaning and exploratory analysis
// pipeline for urban environmental measurements. One observation is a
// city-year row of energy consumption, air quality, waste, water usage,
// CO2 emissions, temperature and population; the pipeline repairs messy
// input and derives statistics, anomalies, trends, correlations and
// insights from it.
//
// # Architecture
//
// Data flows through three stages:
//
// 1. Cleaning: structural validation, duplicate removal (first row of a
// city-year wins), median imputation of missing values, interquartile
// clamping of outliers, and derived per-capita metrics.
//
// 2. Analysis: independent, read-only computations over the cleaned
// dataset. They run concurrently and degrade gracefully on thin data
// instead of failing.
//
// 3. Insights: threshold-driven findings formatted from the cleaning
// report and analysis results.
//
// # Quick Start
//
// Run the full pipeline over a dataset:
//
//	import (
//	    "context"
//	    "github.com/ecopulse/ecopulse/internal/pipeline"
//	    "github.com/ecopulse/ecopulse/pkg/config"
//	    "github.com/ecopulse/ecopulse/pkg/ingest"
//	)
//
//	raw, _ := ingest.ReadCSVFile("observations.csv")
//	p := pipeline.New(config.Default(), logger)
//	results, err := p.Run(context.Background(), raw)
//
// # Key Packages
//
//	pkg/model    - Typed city-year record and dataset model
//	pkg/cleaner  - Validation, deduplication, imputation, clamping
//	pkg/analyzer - Statistics, anomalies, trends, correlations
//	pkg/insight  - Threshold-driven insight formatting
//	pkg/ingest   - CSV and JSON parsing
//	pkg/export   - CSV and JSON output
//	pkg/datagen  - Deterministic synthetic datasets
package ecopulse
