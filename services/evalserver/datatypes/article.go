// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Article is one evaluation input: the full text plus the human-written
// reference summary it will be scored against. Articles are immutable once
// loaded; the run controller holds references and never mutates them.
type Article struct {
	ID               int    `json:"id"`
	Text             string `json:"article"`
	ReferenceSummary string `json:"reference_summary"`
	Dataset          string `json:"dataset"`
}

// SampleArticles are the bundled fallback articles used whenever dataset
// loading fails or the "sample" dataset is selected.
var SampleArticles = []Article{
	{
		ID: 1,
		Text: `The tech industry has seen remarkable growth in artificial intelligence applications over the past year.
Companies are investing billions of dollars in AI research and development, with particular focus on
large language models and computer vision technologies. Major tech giants like Google, Microsoft,
and OpenAI are leading the charge in developing more sophisticated AI systems that can understand
and generate human-like text, analyze images, and even write code. This rapid advancement has sparked
both excitement about the potential benefits and concerns about the ethical implications of AI technology.
Experts predict that AI will continue to transform various industries, from healthcare and finance
to education and entertainment, in the coming years. The investment in AI infrastructure has reached
unprecedented levels, with venture capital funding flowing into AI startups at record rates.
However, concerns about job displacement, privacy, and the concentration of AI power in a few
large corporations continue to grow among policymakers and the general public.`,
		ReferenceSummary: "Tech industry invests billions in AI development, with major companies leading advancement in language models and computer vision, raising both opportunities and ethical concerns about job displacement and corporate concentration.",
		Dataset:          "sample",
	},
	{
		ID: 2,
		Text: `Climate change continues to be one of the most pressing global challenges of our time. Scientists
worldwide are reporting unprecedented changes in weather patterns, rising sea levels, and increasing
temperatures. The latest IPCC report highlights the urgent need for immediate action to reduce
greenhouse gas emissions and transition to renewable energy sources. Many countries have committed
to achieving net-zero emissions by 2050, but experts argue that current efforts are insufficient
to limit global warming to 1.5 degrees Celsius above pre-industrial levels. The report emphasizes
the importance of international cooperation and coordinated efforts to address this global crisis.
Renewable energy technologies like solar and wind have become increasingly cost-competitive with
fossil fuels, leading to rapid adoption in many regions. However, the transition requires massive
infrastructure investments and significant changes to energy systems worldwide. The economic
implications of climate action are substantial, but economists argue that the cost of inaction
would be far greater, potentially leading to trillions in damages from extreme weather events,
agricultural disruption, and mass migration.`,
		ReferenceSummary: "Scientists report urgent climate crisis requiring immediate action to reduce emissions and transition to renewable energy, with current efforts insufficient to meet warming targets despite growing renewable adoption and economic imperatives.",
		Dataset:          "sample",
	},
	{
		ID: 3,
		Text: `The global supply chain disruptions that began during the COVID-19 pandemic continue to affect
businesses and consumers worldwide. Shipping delays, semiconductor shortages, and labor constraints
have forced companies to rethink their supply chain strategies. Many organizations are now focusing
on building more resilient and diversified supply networks rather than optimizing purely for cost
efficiency. The semiconductor shortage has particularly impacted the automotive industry, with
major manufacturers forced to halt production at various facilities. This has led to increased
prices for new vehicles and longer wait times for consumers. Experts suggest that supply chain
normalization may take several more years, as companies work to rebuild inventory levels and
establish more stable supplier relationships. The crisis has also accelerated adoption of digital
supply chain technologies, including AI-powered demand forecasting and blockchain-based tracking
systems. Companies are investing heavily in supply chain visibility tools to better anticipate
and respond to future disruptions.`,
		ReferenceSummary: "COVID-19 pandemic triggered ongoing global supply chain disruptions affecting businesses worldwide, forcing companies to prioritize resilience over cost efficiency while investing in digital tracking and forecasting technologies.",
		Dataset:          "sample",
	},
}
